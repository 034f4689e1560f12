// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Source kinds
const (
	SourceSynthetic = "synthetic"
	SourceCSV       = "csv"
	SourceXLSX      = "xlsx"
	SourcePostgres  = "postgres"
	SourceSnowflake = "snowflake"
)

// Config represents the application configuration
type Config struct {
	Source   SourceConfig
	Cleaning CleaningConfig
	Audit    AuditConfig
	Output   OutputConfig

	// Database connections, only loaded when a source or the audit sink needs them
	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// SourceConfig selects where the raw orders come from
type SourceConfig struct {
	Kind  string
	Path  string // CSV or XLSX file
	Sheet string // XLSX sheet, first sheet when empty
	Query string // SQL query for database sources

	SyntheticSeed    int64
	SyntheticRows    int
	SyntheticDefects bool
}

// CleaningConfig holds pipeline parameters
type CleaningConfig struct {
	OutlierSigma    float64
	DeliveredStatus string
	Policy          string // column=strategy pairs, default policy when empty
}

// AuditConfig controls persistence of cleaning operations
type AuditConfig struct {
	Enabled bool
	Table   string
}

// OutputConfig controls the files written after a run
type OutputConfig struct {
	Dir   string
	XLSX  bool
	JSON  bool
	Quiet bool
}

// LoadConfig loads configuration from a .env file, when present, and
// environment variables, then validates it
func LoadConfig(envFiles ...string) (*Config, error) {
	cfg, err := Load(envFiles...)
	if err != nil {
		return nil, err
	}

	if err := cfg.LoadDatabases(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads settings from the environment without loading database
// configuration or validating, so callers can apply overrides first
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		Source: SourceConfig{
			Kind:             strings.ToLower(getEnv("SOURCE_KIND", SourceSynthetic)),
			Path:             getEnv("SOURCE_PATH", ""),
			Sheet:            getEnv("SOURCE_SHEET", ""),
			Query:            getEnv("SOURCE_QUERY", ""),
			SyntheticSeed:    int64(getEnvAsInt("SYNTHETIC_SEED", 42)),
			SyntheticRows:    getEnvAsInt("SYNTHETIC_ROWS", 100),
			SyntheticDefects: getEnvAsBool("SYNTHETIC_DEFECTS", true),
		},
		Cleaning: CleaningConfig{
			OutlierSigma:    getEnvAsFloat("CLEAN_OUTLIER_SIGMA", 3),
			DeliveredStatus: getEnv("CLEAN_DELIVERED_STATUS", "Entregue"),
			Policy:          getEnv("CLEAN_POLICY", ""),
		},
		Audit: AuditConfig{
			Enabled: getEnvAsBool("AUDIT_ENABLED", false),
			Table:   getEnv("AUDIT_TABLE", "cleaned_sales_orders"),
		},
		Output: OutputConfig{
			Dir:  getEnv("OUTPUT_DIR", "out"),
			XLSX: getEnvAsBool("OUTPUT_XLSX", true),
			JSON: getEnvAsBool("OUTPUT_JSON", true),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
	return cfg, nil
}

// LoadDatabases loads the database configurations the source and audit
// settings require. It can be called again after settings are overridden.
func (c *Config) LoadDatabases() error {
	if c.NeedsPostgres() && c.Postgres == nil {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
		}
		c.Postgres = pgConfig
	}

	if c.NeedsSnowflake() && c.Snowflake == nil {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		c.Snowflake = snowConfig
	}
	return nil
}

// NeedsPostgres reports whether a PostgreSQL connection is required
func (c *Config) NeedsPostgres() bool {
	return c.Source.Kind == SourcePostgres || c.Audit.Enabled
}

// NeedsSnowflake reports whether a Snowflake connection is required
func (c *Config) NeedsSnowflake() bool {
	return c.Source.Kind == SourceSnowflake
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceSynthetic:
		if c.Source.SyntheticRows <= 0 {
			return errors.New("synthetic row count must be positive")
		}
	case SourceCSV, SourceXLSX:
		if c.Source.Path == "" {
			return fmt.Errorf("SOURCE_PATH is required for %s sources", c.Source.Kind)
		}
	case SourcePostgres, SourceSnowflake:
		if c.Source.Query == "" {
			return fmt.Errorf("SOURCE_QUERY is required for %s sources", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	if c.NeedsPostgres() && c.Postgres == nil {
		return errors.New("postgreSQL configuration is required")
	}

	if c.NeedsSnowflake() && c.Snowflake == nil {
		return errors.New("snowflake configuration is required")
	}

	if c.Cleaning.OutlierSigma <= 0 {
		return errors.New("outlier sigma must be positive")
	}

	if c.Cleaning.DeliveredStatus == "" {
		return errors.New("delivered status cannot be empty")
	}

	if c.Audit.Enabled && c.Audit.Table == "" {
		return errors.New("audit table is required when auditing is enabled")
	}

	return nil
}

// loadDotEnv loads the given files, or .env in the working directory when none
// are given. A missing default .env is not an error.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
