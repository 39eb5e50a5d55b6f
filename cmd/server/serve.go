package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/fencerow/fencerow/internal/config"
	"github.com/fencerow/fencerow/internal/database"
	"github.com/fencerow/fencerow/internal/handlers"
	"github.com/fencerow/fencerow/internal/middleware"
	"github.com/fencerow/fencerow/internal/repository"
	"github.com/fencerow/fencerow/internal/services"

	_ "github.com/fencerow/fencerow/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Fencerow API server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServer(); err != nil {
			log.Fatal(err)
		}
	},
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	fieldRepo := repository.NewFieldRepository(db)
	adjacencyRepo := repository.NewAdjacencyRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	logRepo := repository.NewUpdateLogRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	proximityService := services.NewProximityService(fieldRepo, adjacencyRepo, db, cfg.Adjacency.ThresholdMeters)
	accessService := services.NewAccessService(grantRepo, fieldRepo, userRepo, db)
	fieldService := services.NewFieldService(fieldRepo, adjacencyRepo, grantRepo, logRepo, userRepo, proximityService, accessService, db)
	tokenService := services.NewTokenService(tokenRepo, userRepo, cfg.JWT.Secret)
	statsService := services.NewStatsService(userRepo, fieldRepo, adjacencyRepo)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, cfg.TestMode)
	adminMiddleware := middleware.NewAdminMiddleware(cfg.AdminUsers)

	fieldHandler := handlers.NewFieldHandler(fieldService)
	nearbyHandler := handlers.NewNearbyHandler(fieldService)
	accessHandler := handlers.NewAccessHandler(accessService)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	publicHandler := handlers.NewPublicHandler(statsService)
	adminHandler := handlers.NewAdminHandler(userRepo, fieldRepo, proximityService)

	router := gin.Default()

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	{
		api.GET("/stats", publicHandler.GetStats)

		authenticated := api.Group("")
		authenticated.Use(authMiddleware.RequireAuth())
		{
			authenticated.POST("/fields", fieldHandler.CreateField)
			authenticated.GET("/fields", fieldHandler.ListFields)
			authenticated.GET("/fields/:id", fieldHandler.GetField)
			authenticated.PUT("/fields/:id", fieldHandler.UpdateField)
			authenticated.DELETE("/fields/:id", fieldHandler.DeleteField)
			authenticated.GET("/fields/:id/history", fieldHandler.GetFieldHistory)

			authenticated.GET("/nearby", nearbyHandler.GetNearbyFields)

			authenticated.POST("/access/requests", accessHandler.RequestAccess)
			authenticated.GET("/access/requests", accessHandler.ListRequests)
			authenticated.POST("/access/requests/:id/decision", accessHandler.Decide)
			authenticated.POST("/access/requests/:id/revoke", accessHandler.Revoke)

			authenticated.POST("/tokens", tokenHandler.CreateToken)
			authenticated.GET("/tokens", tokenHandler.ListTokens)
			authenticated.DELETE("/tokens/:id", tokenHandler.DeleteToken)
		}

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		admin.Use(adminMiddleware.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/fields", adminHandler.ListAllFields)
			admin.POST("/recompute", adminHandler.RecomputeAll)
		}
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Fencerow server on %s (adjacency threshold %.0f m)", addr, cfg.Adjacency.ThresholdMeters)
	if cfg.TestMode {
		log.Println("⚠️  TEST MODE ENABLED - Authentication bypassed")
	}
	return router.Run(addr)
}
