// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/config"
)

const snowflakeDriver = "snowflake"

// SnowflakeConnector is a warehouse pool orders are queried from
type SnowflakeConnector struct {
	db     *sql.DB
	cfg    *config.SnowflakeConfig
	logger *zap.Logger
}

// NewSnowflakeConnector opens and pings a Snowflake pool
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*SnowflakeConnector, error) {
	if cfg == nil {
		return nil, errors.New("snowflake configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := SnowflakeDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := open(ctx, snowflakeDriver, dsn, cfg.Pool, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}
	return newSnowflakeConnector(db, cfg, logger), nil
}

func newSnowflakeConnector(db *sql.DB, cfg *config.SnowflakeConfig, logger *zap.Logger) *SnowflakeConnector {
	return &SnowflakeConnector{db: db, cfg: cfg, logger: logger}
}

// SnowflakeDSN builds the DSN with the driver's own builder. A query timeout
// becomes the session's STATEMENT_TIMEOUT_IN_SECONDS.
func SnowflakeDSN(cfg *config.SnowflakeConfig) (string, error) {
	sfCfg := &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
	}
	if cfg.Pool.QueryTimeout > 0 {
		seconds := strconv.Itoa(int(cfg.Pool.QueryTimeout.Seconds()))
		sfCfg.Params = map[string]*string{"STATEMENT_TIMEOUT_IN_SECONDS": &seconds}
	}

	dsn, err := sf.DSN(sfCfg)
	if err != nil {
		return "", fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}
	return dsn, nil
}

func (c *SnowflakeConnector) DB() *sql.DB                 { return c.db }
func (c *SnowflakeConnector) DriverName() string          { return snowflakeDriver }
func (c *SnowflakeConnector) QueryTimeout() time.Duration { return c.cfg.Pool.QueryTimeout }

// Validate checks the session database and that a warehouse is active
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var role, database, warehouse sql.NullString
	err := c.db.QueryRowContext(ctx, "SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").
		Scan(&role, &database, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to query Snowflake session: %w", err)
	}
	if !strings.EqualFold(database.String, c.cfg.Database) {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)", database.String, c.cfg.Database)
	}
	if !warehouse.Valid || warehouse.String == "" {
		return fmt.Errorf("no active warehouse for role %s", role.String)
	}

	c.logger.Info("Snowflake connection validated",
		zap.String("role", role.String),
		zap.String("database", database.String),
		zap.String("warehouse", warehouse.String))
	return nil
}

// Close releases the pool
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogPoolStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}
