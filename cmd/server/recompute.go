package main

import (
	"log"

	"github.com/fencerow/fencerow/internal/config"
	"github.com/fencerow/fencerow/internal/database"
	"github.com/fencerow/fencerow/internal/repository"
	"github.com/fencerow/fencerow/internal/services"
	"github.com/spf13/cobra"
)

var recomputeFieldID uint

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild the adjacency graph offline",
	Long: `Recompute adjacency records against the configured threshold.

Runs per field and is idempotent: repeating it yields the same adjacency
set. Use it after bulk boundary loads or after changing
ADJACENCY_THRESHOLD_METERS.`,
	Example: `  fencerow recompute
  fencerow recompute --field 42`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRecompute(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	recomputeCmd.Flags().UintVar(&recomputeFieldID, "field", 0, "recompute a single field id instead of all fields")
}

func runRecompute() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	fieldRepo := repository.NewFieldRepository(db)
	adjacencyRepo := repository.NewAdjacencyRepository(db)
	proximityService := services.NewProximityService(fieldRepo, adjacencyRepo, db, cfg.Adjacency.ThresholdMeters)

	if recomputeFieldID != 0 {
		if err := proximityService.RecomputeAdjacency(recomputeFieldID); err != nil {
			return err
		}
		log.Printf("Recomputed adjacency for field %d", recomputeFieldID)
		return nil
	}

	fields, err := fieldRepo.FindAll()
	if err != nil {
		return err
	}

	recomputed, failed := 0, 0
	for _, field := range fields {
		if err := proximityService.RecomputeAdjacency(field.ID); err != nil {
			log.Printf("field %d: %v", field.ID, err)
			failed++
			continue
		}
		recomputed++
	}

	log.Printf("Recompute finished: %d ok, %d failed (threshold %.0f m)", recomputed, failed, cfg.Adjacency.ThresholdMeters)
	return nil
}
