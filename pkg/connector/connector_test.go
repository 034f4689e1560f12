package connector

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/gidiolindo/Portfolio/pkg/config"
)

func TestConfigurePool(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	configurePool(db, config.PoolConfig{MaxOpen: 7, MaxIdle: 3, MaxLifetime: time.Minute})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)

	LogPoolStats(zaptest.NewLogger(t), "test", db)
}

func TestPostgresConnectorValidate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.PostgresConfig{Database: "shop", User: "sales", Pool: config.PoolConfig{QueryTimeout: time.Minute}}
	c := newPostgresConnector(db, cfg, zaptest.NewLogger(t))
	assert.Equal(t, "pgx", c.DriverName())
	assert.Equal(t, time.Minute, c.QueryTimeout())

	mock.ExpectQuery(`SELECT current_database\(\), current_user, version\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"current_database", "current_user", "version"}).
			AddRow("shop", "sales", "PostgreSQL 16.2"))
	require.NoError(t, c.Validate(context.Background()))

	mock.ExpectQuery(`SELECT current_database\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"current_database", "current_user", "version"}).
			AddRow("postgres", "sales", "PostgreSQL 16.2"))
	err = c.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong database")

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "pgx", Sqlx(c).DriverName())
}

func TestPostgresConnectorCheckCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := newPostgresConnector(db, &config.PostgresConfig{User: "reader"}, zap.NewNop())

	mock.ExpectQuery(`has_schema_privilege`).
		WillReturnRows(sqlmock.NewRows([]string{"current_schema", "allowed"}).AddRow("public", true))
	assert.NoError(t, c.CheckCreate(context.Background()))

	mock.ExpectQuery(`has_schema_privilege`).
		WillReturnRows(sqlmock.NewRows([]string{"current_schema", "allowed"}).AddRow("public", false))
	err = c.CheckCreate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reader cannot create tables in schema public")
}

func TestSnowflakeConnectorValidate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := newSnowflakeConnector(db, &config.SnowflakeConfig{Database: "SALES"}, zaptest.NewLogger(t))
	assert.Equal(t, "snowflake", c.DriverName())

	columns := []string{"role", "database", "warehouse"}
	mock.ExpectQuery(`SELECT CURRENT_ROLE\(\)`).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("ANALYST", "sales", "WH"))
	assert.NoError(t, c.Validate(context.Background()))

	mock.ExpectQuery(`SELECT CURRENT_ROLE\(\)`).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("ANALYST", "SALES", nil))
	err = c.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active warehouse")
}

func TestSnowflakeDSN(t *testing.T) {
	dsn, err := SnowflakeDSN(&config.SnowflakeConfig{
		User:          "sales",
		Password:      "secret",
		Account:       "acme-eu",
		Database:      "SALES",
		Schema:        "PUBLIC",
		Warehouse:     "WH",
		Authenticator: gosnowflake.AuthTypeSnowflake,
		Pool:          config.PoolConfig{QueryTimeout: 2 * time.Minute},
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "sales:secret@acme-eu")
	assert.Contains(t, dsn, "database=SALES")
	assert.Contains(t, dsn, "schema=PUBLIC")
	assert.Contains(t, dsn, "warehouse=WH")
	assert.Contains(t, strings.ToLower(dsn), "statement_timeout_in_seconds=120")

	_, err = SnowflakeDSN(&config.SnowflakeConfig{User: "sales"})
	assert.Error(t, err)
}

func TestForSourceRejectsFileSources(t *testing.T) {
	f := NewFactory(&config.Config{Source: config.SourceConfig{Kind: config.SourceCSV}}, nil)
	_, err := f.ForSource(context.Background())
	assert.Error(t, err)
}

func TestNewConnectorsRequireConfig(t *testing.T) {
	_, err := NewPostgresConnector(context.Background(), nil, nil)
	assert.Error(t, err)
	_, err = NewSnowflakeConnector(context.Background(), nil, nil)
	assert.Error(t, err)
}
