// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Directory holding the snapshot database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Grid limits applied to every computation
	DefaultSteps  int
	MaxSteps      int
	MaxTruncation int
	MaxHilbertDim int // joint dimension bound for the Wigner and Q kinds

	// WignerG is the phase-space scaling factor α = g(x+iy)/2
	WignerG float64

	SnapshotTTL     time.Duration // zero keeps snapshots forever
	CleanupSchedule string        // cron expression with seconds field
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PHASESPACE_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DefaultSteps:    getEnvAsInt("DEFAULT_STEPS", 250),
		MaxSteps:        getEnvAsInt("MAX_STEPS", 1000),
		MaxTruncation:   getEnvAsInt("MAX_TRUNCATION", 100),
		MaxHilbertDim:   getEnvAsInt("MAX_HILBERT_DIM", 400),
		WignerG:         getEnvAsFloat("WIGNER_G", 0), // 0 selects √2
		SnapshotTTL:     time.Duration(getEnvAsInt("SNAPSHOT_TTL_HOURS", 24)) * time.Hour,
		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "0 */15 * * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DefaultSteps < 2 {
		return fmt.Errorf("DEFAULT_STEPS must be at least 2, got %d", c.DefaultSteps)
	}
	if c.MaxSteps < c.DefaultSteps {
		return fmt.Errorf("MAX_STEPS (%d) must not be below DEFAULT_STEPS (%d)", c.MaxSteps, c.DefaultSteps)
	}
	if c.MaxTruncation < 1 {
		return fmt.Errorf("MAX_TRUNCATION must be positive, got %d", c.MaxTruncation)
	}
	if c.MaxHilbertDim < c.MaxTruncation {
		return fmt.Errorf("MAX_HILBERT_DIM (%d) must not be below MAX_TRUNCATION (%d)", c.MaxHilbertDim, c.MaxTruncation)
	}
	if c.WignerG < 0 {
		return fmt.Errorf("WIGNER_G must not be negative, got %g", c.WignerG)
	}
	if c.SnapshotTTL < 0 {
		return fmt.Errorf("SNAPSHOT_TTL_HOURS must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
