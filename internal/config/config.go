package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	GinMode    string
	Database   DatabaseConfig
	JWT        JWTConfig
	Adjacency  AdjacencyConfig
	AdminUsers []string
	TestMode   bool
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
}

type AdjacencyConfig struct {
	// ThresholdMeters is the maximum boundary-to-boundary distance at
	// which two fields count as adjacent. Roughly one field-width.
	ThresholdMeters float64
}

const DefaultAdjacencyThresholdMeters = 100.0

func Load() (*Config, error) {
	godotenv.Load()

	adminUsersStr := os.Getenv("ADMIN_USERS")
	adminUsers := []string{}
	if adminUsersStr != "" {
		adminUsers = strings.Split(adminUsersStr, ",")
		for i := range adminUsers {
			adminUsers[i] = strings.TrimSpace(adminUsers[i])
		}
	}

	threshold := DefaultAdjacencyThresholdMeters
	if v := os.Getenv("ADJACENCY_THRESHOLD_METERS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			threshold = parsed
		}
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Adjacency: AdjacencyConfig{
			ThresholdMeters: threshold,
		},
		AdminUsers: adminUsers,
		TestMode:   getEnv("TEST_MODE", "false") == "true",
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
