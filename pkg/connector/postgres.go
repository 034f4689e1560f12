// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/config"
)

const postgresDriver = "pgx"

// PostgresConnector is a pgx pool used as an order source or audit sink
type PostgresConnector struct {
	db     *sql.DB
	cfg    *config.PostgresConfig
	logger *zap.Logger
}

// NewPostgresConnector opens and pings a PostgreSQL pool
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	if cfg == nil {
		return nil, errors.New("postgreSQL configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := open(ctx, postgresDriver, cfg.ConnectionString(), cfg.Pool, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return newPostgresConnector(db, cfg, logger), nil
}

func newPostgresConnector(db *sql.DB, cfg *config.PostgresConfig, logger *zap.Logger) *PostgresConnector {
	return &PostgresConnector{db: db, cfg: cfg, logger: logger}
}

func (c *PostgresConnector) DB() *sql.DB                 { return c.db }
func (c *PostgresConnector) DriverName() string          { return postgresDriver }
func (c *PostgresConnector) QueryTimeout() time.Duration { return c.cfg.Pool.QueryTimeout }

// Validate checks the session database and logs the server version
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var database, user, version string
	err := c.db.QueryRowContext(ctx, "SELECT current_database(), current_user, version()").
		Scan(&database, &user, &version)
	if err != nil {
		return fmt.Errorf("failed to query PostgreSQL session: %w", err)
	}
	if database != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)", database, c.cfg.Database)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("database", database),
		zap.String("user", user),
		zap.String("version", version))
	return nil
}

// CheckCreate verifies the user may create tables in the current schema,
// which the audit recorder needs for its table
func (c *PostgresConnector) CheckCreate(ctx context.Context) error {
	var schema string
	var allowed bool
	err := c.db.QueryRowContext(ctx,
		"SELECT current_schema(), has_schema_privilege(current_schema(), 'CREATE')").
		Scan(&schema, &allowed)
	if err != nil {
		return fmt.Errorf("failed to check schema privileges: %w", err)
	}
	if !allowed {
		return fmt.Errorf("user %s cannot create tables in schema %s", c.cfg.User, schema)
	}
	return nil
}

// Close releases the pool
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogPoolStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}
