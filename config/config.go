package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

// Config holds every setting of the bracket tracker service.
type Config struct {
	DatabaseURL  string
	DatabaseType string
	ServerPort   int
	BestOf       int
	CORSOrigins  []string
	LogLevel     slog.Level

	// Snapshot archive, optional. Either all R2 fields are set or none.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// ArchiveEnabled reports whether bracket snapshots should be uploaded to R2.
func (c *Config) ArchiveEnabled() bool {
	return c.R2BucketName != ""
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	dbType := strings.ToLower(getEnv("DATABASE_TYPE", DatabasePostgres))
	if dbType != DatabasePostgres && dbType != DatabaseSQLite {
		return nil, fmt.Errorf("DATABASE_TYPE must be %q or %q, got %q", DatabasePostgres, DatabaseSQLite, dbType)
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	bestOf, err := strconv.Atoi(getEnv("BEST_OF", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid BEST_OF environment variable: %w", err)
	}
	if bestOf <= 0 || bestOf%2 == 0 {
		return nil, fmt.Errorf("BEST_OF must be a positive odd number, got %d", bestOf)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		DatabaseType:      dbType,
		ServerPort:        port,
		BestOf:            bestOf,
		CORSOrigins:       splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:          level,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	if err := cfg.validateArchive(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validateArchive() error {
	fields := map[string]string{
		"R2_ACCOUNT_ID":        c.R2AccountID,
		"R2_ACCESS_KEY_ID":     c.R2AccessKeyID,
		"R2_SECRET_ACCESS_KEY": c.R2SecretAccessKey,
		"R2_BUCKET_NAME":       c.R2BucketName,
		"R2_PUBLIC_BASE_URL":   c.R2PublicBaseURL,
	}
	var missing []string
	for name, value := range fields {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 || len(missing) == len(fields) {
		return nil
	}
	sort.Strings(missing)
	return errors.New("snapshot archive is partially configured, missing: " + strings.Join(missing, ", "))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

