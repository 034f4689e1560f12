// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/config"
)

// Connector is an open database an order source or the audit sink runs on
type Connector interface {
	// DB returns the underlying connection pool
	DB() *sql.DB

	// DriverName returns the database/sql driver the pool was opened with
	DriverName() string

	// QueryTimeout bounds a single source query; zero means no bound
	QueryTimeout() time.Duration

	// Validate checks the session landed on the configured database
	Validate(ctx context.Context) error

	// Close releases the pool
	Close() error
}

// Sqlx wraps a connector's pool for sqlx, keeping the driver's bind variables
func Sqlx(c Connector) *sqlx.DB {
	return sqlx.NewDb(c.DB(), c.DriverName())
}

// open creates a pool for driver, applies the pool limits and pings it
func open(ctx context.Context, driver, dsn string, pool config.PoolConfig, pingTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s pool: %w", driver, err)
	}
	configurePool(db, pool)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping failed after %v: %w", pingTimeout, err)
	}
	return db, nil
}

// configurePool applies the non-zero limits of pool to db
func configurePool(db *sql.DB, pool config.PoolConfig) {
	if pool.MaxOpen > 0 {
		db.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		db.SetMaxIdleConns(pool.MaxIdle)
	}
	if pool.MaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.MaxLifetime)
	}
	if pool.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.MaxIdleTime)
	}
}

// LogPoolStats logs the pool counters of db at debug level
func LogPoolStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := db.Stats()
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConnections),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	)
}
