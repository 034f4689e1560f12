// pkg/source/sql.go
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/converter"
	"github.com/gidiolindo/Portfolio/pkg/model"
)

// SQLSource reads orders with a query. Result columns are matched to the order
// schema by name; driver values are kept as typed cells.
type SQLSource struct {
	db        *sqlx.DB
	query     string
	args      []interface{}
	timeout   time.Duration
	converter *converter.TypeConverter
	logger    *zap.Logger
}

// NewSQLSource creates a query source over an open connection
func NewSQLSource(db *sqlx.DB, query string, logger *zap.Logger, args ...interface{}) *SQLSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLSource{
		db:        db,
		query:     query,
		args:      args,
		converter: converter.NewTypeConverter(logger),
		logger:    logger,
	}
}

// WithTimeout bounds the query and the scan of its rows
func (s *SQLSource) WithTimeout(timeout time.Duration) *SQLSource {
	s.timeout = timeout
	return s
}

// Load runs the query and reads every row
func (s *SQLSource) Load(ctx context.Context) (*model.Table, error) {
	if s.db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := s.db.QueryxContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var columns []string
	var index []int
	for i, name := range names {
		canonical, ok := CanonicalColumn(name)
		if !ok {
			s.logger.Debug("Ignoring unknown column", zap.String("column", name))
			continue
		}
		columns = append(columns, canonical)
		index = append(index, i)
	}

	t := model.NewTable(columns...)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", t.Len()+1, err)
		}
		row := make(model.Row, len(index))
		for j, i := range index {
			row[j] = s.converter.FromDriverValue(values[i])
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	s.logger.Info("Loaded SQL source",
		zap.String("driver", s.db.DriverName()),
		zap.Int("rows", t.Len()))

	if !t.HasColumn(model.ColProduct) {
		return t, nil
	}
	return model.DeriveCategory(t)
}
