// Package config provides application configuration management through environment variables.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Logging
	LogLevel string

	// Storage configuration. StorageDir is the root directory for the
	// file-backed key repository (policies are held in memory); AuditLogPath is the
	// append-only hash-chained audit log file.
	StorageDir   string
	AuditLogPath string

	// Adaptive threat assessor configuration. ThreatDecayRatePerMin is the
	// fraction of an event's severity contribution lost per minute (not the
	// retention multiplier the assessor multiplies by internally).
	ThreatWindow          time.Duration
	ThreatDecayRatePerMin float64
	ThreatHysteresis      float64

	// Sweeper configuration.
	SweepInterval time.Duration

	// Metrics configuration.
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsPort      int
}

// Load loads configuration from environment variables.
// It first attempts to load a .env file by searching recursively from the current directory
// up to the root directory. If no .env file is found, it continues with existing environment variables.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		StorageDir:   env.GetString("STORAGE_DIR", "./data/keys"),
		AuditLogPath: env.GetString("AUDIT_LOG_PATH", "./data/audit.jsonl"),

		ThreatWindow:          env.GetDuration("THREAT_WINDOW_MINUTES", 15, time.Minute),
		ThreatDecayRatePerMin: env.GetFloat64("THREAT_DECAY_RATE_PER_MIN", 0.2),
		ThreatHysteresis:      env.GetFloat64("THREAT_HYSTERESIS", 0.15),

		SweepInterval: env.GetDuration("SWEEP_INTERVAL_SECONDS", 60, time.Second),

		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "citadel"),
		MetricsPort:      env.GetInt("METRICS_PORT", 9090),
	}
}

// SlogLevel maps LogLevel to the equivalent slog.Level, defaulting to Info
// for anything it doesn't recognize.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
