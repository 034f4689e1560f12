// pkg/model/table.go
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required column is absent from a table
	ErrMissingColumn = errors.New("missing expected column")
	// ErrEmptyDataset is returned when a table has no rows
	ErrEmptyDataset = errors.New("dataset is empty")
)

// Row is one ordered record of a table
type Row []Value

// Clone returns an independent copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Equal reports whether every cell of r equals the matching cell of o
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Table is an in-memory dataset with named columns and ordered rows
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds a row. The row must have one cell per column.
func (t *Table) Append(row Row) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// ColumnIndex returns the position of a column by name
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, col := range t.Columns {
		if col == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrMissingColumn, name)
}

// HasColumn reports whether the table has a column with the given name
func (t *Table) HasColumn(name string) bool {
	_, err := t.ColumnIndex(name)
	return err == nil
}

// Column returns a copy of all cells of one column in row order
func (t *Table) Column(name string) ([]Value, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Clone deep-copies the table
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// Filter returns a new table holding copies of the rows for which keep returns true
func (t *Table) Filter(keep func(i int, r Row) bool) *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for i, row := range t.Rows {
		if keep(i, row) {
			out.Rows = append(out.Rows, row.Clone())
		}
	}
	return out
}

// WithColumn returns a copy of the table with an extra column computed per row
func (t *Table) WithColumn(name string, compute func(r Row) Value) *Table {
	out := NewTable(append(append([]string{}, t.Columns...), name)...)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		next := make(Row, len(row)+1)
		copy(next, row)
		next[len(row)] = compute(row)
		out.Rows[i] = next
	}
	return out
}
