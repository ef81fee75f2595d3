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
	DataDir             string // Base directory for databases and backup staging (always absolute)
	Port                int
	LogLevel            string
	LogPretty           bool
	DevMode             bool
	RunRetentionDays    int    // How long archived runs are kept before cleanup
	CleanupSchedule     string // Cron schedule (with seconds) for the run cleanup job
	BackupSchedule      string // Cron schedule (with seconds) for the backup job
	MaintenanceSchedule string // Cron schedule (with seconds) for database maintenance
	Backup              *BackupConfig
	QPU                 *QPUConfig
}

// BackupConfig holds the object storage settings for database backups.
// Backups are enabled by setting a bucket.
type BackupConfig struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	RetentionDays int
}

// Enabled reports whether backups should run.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != ""
}

// QPUConfig holds the remote quantum backend settings. The backend is
// enabled by setting an endpoint; without one every request runs on the
// in-process simulator.
type QPUConfig struct {
	Endpoint string
	APIKey   string
}

// Enabled reports whether a remote backend is configured.
func (q *QPUConfig) Enabled() bool {
	return q != nil && q.Endpoint != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("QUANTRISK_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("PORT", 8080),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogPretty:           getEnvAsBool("LOG_PRETTY", false),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		RunRetentionDays:    getEnvAsInt("RUN_RETENTION_DAYS", 30),
		CleanupSchedule:     getEnv("CLEANUP_SCHEDULE", "0 0 3 * * *"),
		BackupSchedule:      getEnv("BACKUP_SCHEDULE", "0 30 3 * * *"),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 2 * * *"),
		Backup: &BackupConfig{
			Endpoint:      getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:        getEnv("BACKUP_S3_REGION", "auto"),
			Bucket:        getEnv("BACKUP_S3_BUCKET", ""),
			AccessKey:     getEnv("BACKUP_S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("BACKUP_S3_SECRET_KEY", ""),
			RetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
		QPU: &QPUConfig{
			Endpoint: getEnv("QPU_ENDPOINT", ""),
			APIKey:   getEnv("QPU_API_KEY", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be within [1, 65535], got %d", c.Port)
	}
	if c.RunRetentionDays <= 0 {
		return fmt.Errorf("run retention must be at least one day, got %d", c.RunRetentionDays)
	}
	if c.Backup.Enabled() {
		if c.Backup.AccessKey == "" || c.Backup.SecretKey == "" {
			return fmt.Errorf("backup bucket %q configured without access credentials", c.Backup.Bucket)
		}
	}
	return nil
}

// RunRetention returns the archived run retention as a duration.
func (c *Config) RunRetention() time.Duration {
	return time.Duration(c.RunRetentionDays) * 24 * time.Hour
}

// Helper functions
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
