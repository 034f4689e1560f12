// pkg/source/source.go
package source

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// Source loads a raw sales order table. Cells may still hold text in numeric
// columns; typing is left to the cleaner.
type Source interface {
	Load(ctx context.Context) (*model.Table, error)
}

// headerAliases maps accepted header spellings to canonical column names.
// The Portuguese headers are the ones produced by the legacy analysis notebooks.
var headerAliases = map[string]string{
	"order_id":        model.ColOrderID,
	"id_pedido":       model.ColOrderID,
	"purchase_date":   model.ColPurchaseDate,
	"data_compra":     model.ColPurchaseDate,
	"customer_id":     model.ColCustomerID,
	"id_cliente":      model.ColCustomerID,
	"product":         model.ColProduct,
	"produto":         model.ColProduct,
	"category":        model.ColCategory,
	"categoria":       model.ColCategory,
	"quantity":        model.ColQuantity,
	"quantidade":      model.ColQuantity,
	"unit_price":      model.ColUnitPrice,
	"preço_unitario":  model.ColUnitPrice,
	"preco_unitario":  model.ColUnitPrice,
	"delivery_status": model.ColDeliveryStatus,
	"status_entrega":  model.ColDeliveryStatus,
}

// CanonicalColumn returns the canonical name for a header, or false when the
// header is not part of the order schema
func CanonicalColumn(header string) (string, bool) {
	name, ok := headerAliases[strings.ToLower(strings.TrimSpace(header))]
	return name, ok
}

// tableBuilder maps positional records onto the order schema
type tableBuilder struct {
	logger  *zap.Logger
	columns []string
	index   []int // record position per kept column
}

func newTableBuilder(header []string, logger *zap.Logger) (*tableBuilder, error) {
	if len(header) == 0 {
		return nil, errors.New("source has no header row")
	}
	b := &tableBuilder{logger: logger}
	seen := make(map[string]bool)
	for i, h := range header {
		name, ok := CanonicalColumn(h)
		if !ok {
			logger.Debug("Ignoring unknown column", zap.String("column", h))
			continue
		}
		if seen[name] {
			logger.Warn("Ignoring repeated column", zap.String("column", h))
			continue
		}
		seen[name] = true
		b.columns = append(b.columns, name)
		b.index = append(b.index, i)
	}
	return b, nil
}

// build creates the table, deriving the category column when it is absent
func (b *tableBuilder) build(records [][]string) (*model.Table, error) {
	t := model.NewTable(b.columns...)
	t.Rows = make([]model.Row, 0, len(records))
	for _, rec := range records {
		row := make(model.Row, len(b.index))
		for j, i := range b.index {
			if i < len(rec) {
				row[j] = textCell(rec[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if !t.HasColumn(model.ColProduct) {
		return t, nil
	}
	return model.DeriveCategory(t)
}

// textCell wraps raw text, treating blank cells as missing
func textCell(s string) model.Value {
	if strings.TrimSpace(s) == "" {
		return model.Missing()
	}
	return model.Text(s)
}
