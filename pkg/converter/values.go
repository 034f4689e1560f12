// pkg/converter/values.go
package converter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// ErrUnparseable is returned when a cell cannot be read as its nominal type
var ErrUnparseable = errors.New("unparseable value")

// Coerce converts a cell to the target column type.
// Null tokens become the missing marker without error. Text that cannot be
// parsed returns ErrUnparseable together with the missing marker, so callers
// can record the loss before moving on.
func (c *TypeConverter) Coerce(value model.Value, target model.ColumnType) (model.Value, error) {
	if value.IsMissing() {
		return value, nil
	}
	if s, ok := value.Str(); ok && c.IsNullToken(s) {
		return model.Missing(), nil
	}

	switch target {
	case model.TypeInt:
		return c.convertToInt(value)
	case model.TypeFloat:
		return c.convertToFloat(value)
	case model.TypeDate:
		return c.convertToDate(value)
	default:
		return c.convertToText(value), nil
	}
}

// convertToInt converts a cell to an integer
func (c *TypeConverter) convertToInt(value model.Value) (model.Value, error) {
	switch value.Kind() {
	case model.KindInt:
		return value, nil
	case model.KindFloat:
		if i, ok := value.Int(); ok {
			return model.Int(i), nil
		}
		return model.Missing(), fmt.Errorf("%w: %v is not integral", ErrUnparseable, value)
	case model.KindText:
		s, _ := value.Str()
		cleaned := strings.TrimSpace(s)
		if i, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
			return model.Int(i), nil
		}
		// Integer columns that once held missing values are often written as "123.0"
		f, err := c.parseFloat(cleaned)
		if err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return model.Int(int64(f)), nil
		}
		return model.Missing(), fmt.Errorf("%w: cannot parse %q as integer", ErrUnparseable, s)
	default:
		return model.Missing(), fmt.Errorf("%w: cannot convert %s to integer", ErrUnparseable, value.Kind())
	}
}

// convertToFloat converts a cell to a decimal
func (c *TypeConverter) convertToFloat(value model.Value) (model.Value, error) {
	switch value.Kind() {
	case model.KindFloat:
		return value, nil
	case model.KindInt:
		f, _ := value.Float()
		return model.Float(f), nil
	case model.KindText:
		s, _ := value.Str()
		f, err := c.parseFloat(strings.TrimSpace(s))
		if err != nil {
			return model.Missing(), fmt.Errorf("%w: cannot parse %q as decimal", ErrUnparseable, s)
		}
		return model.Float(f), nil
	default:
		return model.Missing(), fmt.Errorf("%w: cannot convert %s to decimal", ErrUnparseable, value.Kind())
	}
}

// convertToDate converts a cell to a calendar date
func (c *TypeConverter) convertToDate(value model.Value) (model.Value, error) {
	switch value.Kind() {
	case model.KindDate:
		return value, nil
	case model.KindText:
		s, _ := value.Str()
		t, err := ParseTime(strings.TrimSpace(s))
		if err != nil {
			return model.Missing(), fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		return model.Date(t), nil
	default:
		return model.Missing(), fmt.Errorf("%w: cannot convert %s to date", ErrUnparseable, value.Kind())
	}
}

// convertToText renders any cell as text
func (c *TypeConverter) convertToText(value model.Value) model.Value {
	if value.Kind() == model.KindText {
		return value
	}
	return model.Text(value.String())
}

// parseFloat parses decimal text, rejecting NaN and infinities
func (c *TypeConverter) parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty string")
	}
	if c.config.AllowDecimalComma && !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}

// FromDriverValue converts a value scanned from database/sql into a cell
func (c *TypeConverter) FromDriverValue(v interface{}) model.Value {
	switch val := v.(type) {
	case nil:
		return model.Missing()
	case string:
		if c.IsNullToken(val) {
			return model.Missing()
		}
		return model.Text(val)
	case []byte:
		if c.IsNullToken(string(val)) {
			return model.Missing()
		}
		return model.Text(string(val))
	case int:
		return model.Int(int64(val))
	case int32:
		return model.Int(int64(val))
	case int64:
		return model.Int(val)
	case float32:
		return floatOrMissing(float64(val))
	case float64:
		return floatOrMissing(val)
	case bool:
		return model.Text(strconv.FormatBool(val))
	case time.Time:
		return model.Date(val)
	default:
		c.logger.Debug("Converting unexpected driver type to text",
			zap.String("type", fmt.Sprintf("%T", v)))
		return model.Text(fmt.Sprintf("%v", val))
	}
}

func floatOrMissing(f float64) model.Value {
	if math.IsNaN(f) {
		return model.Missing()
	}
	return model.Float(f)
}
