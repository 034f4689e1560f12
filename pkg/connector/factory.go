// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/config"
)

// Factory opens the connections a configuration asks for
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a factory over cfg
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{cfg: cfg, logger: logger}
}

// Postgres opens and validates the PostgreSQL connection
func (f *Factory) Postgres(ctx context.Context) (*PostgresConnector, error) {
	conn, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.logger.Named("postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}
	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Snowflake opens and validates the Snowflake connection
func (f *Factory) Snowflake(ctx context.Context) (*SnowflakeConnector, error) {
	conn, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.logger.Named("snowflake"))
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}
	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// ForSource opens the connection of a database source kind
func (f *Factory) ForSource(ctx context.Context) (Connector, error) {
	switch f.cfg.Source.Kind {
	case config.SourcePostgres:
		conn, err := f.Postgres(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case config.SourceSnowflake:
		conn, err := f.Snowflake(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("source kind %q does not use a database", f.cfg.Source.Kind)
	}
}
