package converter

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

func TestCoerce(t *testing.T) {
	c := NewTypeConverter(zap.NewNop())

	tests := []struct {
		name    string
		in      model.Value
		target  model.ColumnType
		want    model.Value
		wantErr bool
	}{
		{"decimal text", model.Text("5999.9"), model.TypeFloat, model.Float(5999.9), false},
		{"decimal with spaces", model.Text(" 850.00 "), model.TypeFloat, model.Float(850), false},
		{"decimal comma", model.Text("799,50"), model.TypeFloat, model.Float(799.5), false},
		{"int into float column", model.Int(3), model.TypeFloat, model.Float(3), false},
		{"float passes through", model.Float(2.5), model.TypeFloat, model.Float(2.5), false},
		{"invalid token", model.Text("valor_invalido"), model.TypeFloat, model.Missing(), true},
		{"nan token", model.Text("nan"), model.TypeFloat, model.Missing(), false},
		{"empty text", model.Text(""), model.TypeInt, model.Missing(), false},
		{"integer text", model.Text("123"), model.TypeInt, model.Int(123), false},
		{"integral float text", model.Text("123.0"), model.TypeInt, model.Int(123), false},
		{"fractional into int", model.Text("12.5"), model.TypeInt, model.Missing(), true},
		{"missing stays missing", model.Missing(), model.TypeInt, model.Missing(), false},
		{"date text", model.Text("2025-03-01"), model.TypeDate, model.Date(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), false},
		{"timestamp text", model.Text("2025-03-01 10:30:00"), model.TypeDate, model.Date(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), false},
		{"bad date", model.Text("yesterday"), model.TypeDate, model.Missing(), true},
		{"number into string column", model.Int(7), model.TypeString, model.Text("7"), false},
		{"null status token", model.Text("NaN"), model.TypeString, model.Missing(), false},
		{"infinity rejected", model.Text("Inf"), model.TypeFloat, model.Missing(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Coerce(tt.in, tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnparseable))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want.Kind(), got.Kind())
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestCoerceIsIdempotent(t *testing.T) {
	c := NewTypeConverter(nil)
	inputs := []model.Value{
		model.Text("10.00"), model.Text("valor_invalido"), model.Text("42"), model.Missing(),
	}
	for _, target := range []model.ColumnType{model.TypeInt, model.TypeFloat} {
		for _, in := range inputs {
			once, _ := c.Coerce(in, target)
			twice, err := c.Coerce(once, target)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		}
	}
}

func TestFromDriverValue(t *testing.T) {
	c := NewTypeConverter(zap.NewNop())
	day := time.Date(2025, 2, 14, 13, 0, 0, 0, time.UTC)

	assert.True(t, c.FromDriverValue(nil).IsMissing())
	assert.True(t, c.FromDriverValue(math.NaN()).IsMissing())
	assert.Equal(t, model.Int(5), c.FromDriverValue(int64(5)))
	assert.Equal(t, model.Float(1.5), c.FromDriverValue(1.5))
	assert.Equal(t, model.Text("Notebook"), c.FromDriverValue([]byte("Notebook")))
	assert.True(t, c.FromDriverValue("null").IsMissing())
	assert.Equal(t, model.Date(day), c.FromDriverValue(day))
}

func TestDetectTimeFormat(t *testing.T) {
	assert.Equal(t, "2006-01-02", DetectTimeFormat("2025-03-01"))
	assert.Equal(t, time.RFC3339, DetectTimeFormat("2025-03-01T10:00:00Z"))
	assert.Equal(t, "", DetectTimeFormat("not a date"))
}
