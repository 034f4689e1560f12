// pkg/source/synthetic.go
package source

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// Fixture parameters of the generated order book
var (
	syntheticStart  = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	syntheticPrices = []float64{5999.90, 8500.00, 799.50, 2100.00, 850.00}
	statusWeights   = []struct {
		status string
		weight float64
	}{
		{model.StatusDelivered, 0.80},
		{model.StatusPending, 0.15},
		{model.StatusCancelled, 0.05},
	}
)

// Synthetic generates a reproducible order book, optionally with the defects
// the cleaner is meant to repair
type Synthetic struct {
	seed    int64
	rows    int
	defects bool
	logger  *zap.Logger
}

// NewSynthetic creates a generator with defects enabled
func NewSynthetic(seed int64, rows int, logger *zap.Logger) *Synthetic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthetic{seed: seed, rows: rows, defects: true, logger: logger}
}

// WithDefects toggles defect injection
func (s *Synthetic) WithDefects(defects bool) *Synthetic {
	s.defects = defects
	return s
}

// Load generates the table
func (s *Synthetic) Load(ctx context.Context) (*model.Table, error) {
	if s.rows <= 0 {
		return nil, errors.New("synthetic row count must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(s.seed))
	t := model.NewTable(
		model.ColOrderID,
		model.ColPurchaseDate,
		model.ColCustomerID,
		model.ColProduct,
		model.ColQuantity,
		model.ColUnitPrice,
		model.ColDeliveryStatus,
		model.ColCategory,
	)

	for i := 0; i < s.rows; i++ {
		product := model.Products[rng.Intn(len(model.Products))]
		date := syntheticStart.AddDate(0, 0, i-rng.Intn(30))
		row := model.Row{
			model.Int(int64(1000 + rng.Intn(101))),
			model.Date(date),
			model.Int(int64(100 + rng.Intn(50))),
			model.Text(product),
			model.Int(int64(1 + rng.Intn(4))),
			model.Float(syntheticPrices[i%len(syntheticPrices)]),
			model.Text(pickStatus(rng)),
			model.Text(model.CategoryFor(product)),
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}

	if s.defects {
		injectDefects(t)
	}

	s.logger.Info("Generated synthetic orders",
		zap.Int64("seed", s.seed),
		zap.Int("rows", t.Len()),
		zap.Bool("defects", s.defects))
	return t, nil
}

func pickStatus(rng *rand.Rand) string {
	r := rng.Float64()
	var acc float64
	for _, sw := range statusWeights {
		acc += sw.weight
		if r < acc {
			return sw.status
		}
	}
	return statusWeights[len(statusWeights)-1].status
}

// injectDefects reproduces the data problems of the legacy export: missing
// quantities, statuses and customers, three duplicated rows, prices and
// customer IDs exported as text with one unparseable price, and one quantity
// outlier. Defects addressed beyond the generated rows are skipped.
func injectDefects(t *model.Table) {
	qty, _ := t.ColumnIndex(model.ColQuantity)
	status, _ := t.ColumnIndex(model.ColDeliveryStatus)
	customer, _ := t.ColumnIndex(model.ColCustomerID)
	price, _ := t.ColumnIndex(model.ColUnitPrice)

	set := func(row, col int, v model.Value) {
		if row < len(t.Rows) {
			t.Rows[row][col] = v
		}
	}

	// A column holding missing values is exported as float
	for i := range t.Rows {
		f, _ := t.Rows[i][qty].Float()
		t.Rows[i][qty] = model.Float(f)
	}
	for i := 5; i <= 10; i++ {
		set(i, qty, model.Missing())
	}
	for i := 20; i <= 22; i++ {
		set(i, status, model.Missing())
	}
	set(30, customer, model.Missing())

	n := len(t.Rows)
	for i := 0; i < 3 && i < n; i++ {
		t.Rows = append(t.Rows, t.Rows[i].Clone())
	}

	for i := range t.Rows {
		t.Rows[i][price] = model.Text(pythonFloat(t.Rows[i][price]))
		t.Rows[i][customer] = model.Text(pythonFloat(t.Rows[i][customer]))
	}
	set(15, price, model.Text("valor_invalido"))
	set(70, qty, model.Float(50))
}

// pythonFloat renders a number the way a float column is stringified by the
// legacy export: "8500.0", "799.5", and "nan" for missing cells
func pythonFloat(v model.Value) string {
	f, ok := v.Float()
	if !ok {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == float64(int64(f)) {
		s = fmt.Sprintf("%s.0", s)
	}
	return s
}
