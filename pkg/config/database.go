// pkg/config/database.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// PoolConfig holds the database/sql pool limits of one connection
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration

	// QueryTimeout bounds statements run on the connection; zero disables it
	QueryTimeout time.Duration
}

// SnowflakeConfig holds the warehouse an order query runs against
type SnowflakeConfig struct {
	Account       string
	User          string
	Password      string
	Warehouse     string
	Database      string
	Schema        string
	Role          string
	Authenticator gosnowflake.AuthType

	Pool PoolConfig
}

// PostgresConfig holds a PostgreSQL connection, used both as an order
// source and as the audit sink
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	Pool PoolConfig
}

// LoadSnowflakeConfig loads Snowflake configuration from SNOWFLAKE_* variables
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	required, err := requireEnv("SNOWFLAKE_USER", "SNOWFLAKE_PASSWORD", "SNOWFLAKE_ACCOUNT", "SNOWFLAKE_WAREHOUSE")
	if err != nil {
		return nil, err
	}

	return &SnowflakeConfig{
		Account:       required["SNOWFLAKE_ACCOUNT"],
		User:          required["SNOWFLAKE_USER"],
		Password:      required["SNOWFLAKE_PASSWORD"],
		Warehouse:     required["SNOWFLAKE_WAREHOUSE"],
		Database:      getEnv("SNOWFLAKE_DATABASE", "SALES"),
		Schema:        getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: parseAuthenticator(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake")),
		Pool:          loadPool("SNOWFLAKE", 4, 10*time.Minute),
	}, nil
}

// parseAuthenticator maps SNOWFLAKE_AUTHENTICATOR onto the driver's auth
// types, falling back to password authentication
func parseAuthenticator(s string) gosnowflake.AuthType {
	switch strings.ToLower(s) {
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}

// LoadPostgresConfig loads PostgreSQL configuration from POSTGRES_* variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	required, err := requireEnv("POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB")
	if err != nil {
		return nil, err
	}

	return &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnvAsInt("POSTGRES_PORT", 5432),
		User:     required["POSTGRES_USER"],
		Password: required["POSTGRES_PASSWORD"],
		Database: required["POSTGRES_DB"],
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		Pool:     loadPool("POSTGRES", 5, 30*time.Minute),
	}, nil
}

// ConnectionString returns the connection URL. A query timeout is passed as
// the statement_timeout runtime parameter.
func (c *PostgresConfig) ConnectionString() string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.Pool.QueryTimeout > 0 {
		q.Set("statement_timeout", strconv.FormatInt(c.Pool.QueryTimeout.Milliseconds(), 10))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// loadPool reads <PREFIX>_MAX_OPEN_CONNS and friends
func loadPool(prefix string, maxOpen int, maxLifetime time.Duration) PoolConfig {
	seconds := func(name string, def time.Duration) time.Duration {
		return time.Duration(getEnvAsInt(prefix+"_"+name, int(def.Seconds()))) * time.Second
	}
	return PoolConfig{
		MaxOpen:      getEnvAsInt(prefix+"_MAX_OPEN_CONNS", maxOpen),
		MaxIdle:      getEnvAsInt(prefix+"_MAX_IDLE_CONNS", 2),
		MaxLifetime:  seconds("CONN_MAX_LIFETIME_SECONDS", maxLifetime),
		MaxIdleTime:  seconds("CONN_MAX_IDLE_TIME_SECONDS", 5*time.Minute),
		QueryTimeout: seconds("QUERY_TIMEOUT_SECONDS", 5*time.Minute),
	}
}

// requireEnv returns the values of keys, or one error naming every key
// that is unset
func requireEnv(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	var missing []string
	for _, key := range keys {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return values, nil
}
