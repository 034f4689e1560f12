// pkg/converter/converter.go
package converter

import (
	"strings"

	"go.uber.org/zap"
)

// TypeConverter handles coercion of raw cell values to their nominal column types
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
	nulls  map[string]struct{}
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Text tokens that denote an absent value
	NullTokens []string
	// Whether to treat empty or whitespace-only strings as missing
	EmptyStringAsNull bool
	// Accept a comma as decimal separator when the text has no dot ("799,50")
	AllowDecimalComma bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		NullTokens: []string{
			"null", "nil", "nan", "none", "na", "n/a", "<na>", "nat",
		},
		EmptyStringAsNull: true,
		AllowDecimalComma: true,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	nulls := make(map[string]struct{}, len(config.NullTokens))
	for _, tok := range config.NullTokens {
		nulls[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return &TypeConverter{
		logger: logger,
		config: config,
		nulls:  nulls,
	}
}

// IsNullToken reports whether a text cell denotes an absent value
func (c *TypeConverter) IsNullToken(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return c.config.EmptyStringAsNull
	}
	_, ok := c.nulls[strings.ToLower(trimmed)]
	return ok
}
