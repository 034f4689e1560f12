// pkg/cleaner/impute.go
package cleaner

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// Strategy is how the resolver treats missing cells of a column
type Strategy int

const (
	// StrategyDropRow removes rows holding a missing cell in the column
	StrategyDropRow Strategy = iota
	// StrategyMedian fills missing cells with the column median
	StrategyMedian
	// StrategyMode fills missing cells with the most frequent value
	StrategyMode
)

// String returns a string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyDropRow:
		return "drop"
	case StrategyMedian:
		return "median"
	case StrategyMode:
		return "mode"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ParseStrategy reads a strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop", "drop-row", "drop_row":
		return StrategyDropRow, nil
	case "median":
		return StrategyMedian, nil
	case "mode":
		return StrategyMode, nil
	default:
		return StrategyDropRow, fmt.Errorf("unknown imputation strategy %q", s)
	}
}

// Policy maps column names to imputation strategies. Columns without an entry
// are treated as StrategyDropRow.
type Policy map[string]Strategy

// DefaultPolicy returns the sales order imputation policy
func DefaultPolicy() Policy {
	return Policy{
		model.ColQuantity:       StrategyMedian,
		model.ColDeliveryStatus: StrategyMode,
		model.ColCustomerID:     StrategyDropRow,
		model.ColUnitPrice:      StrategyDropRow,
	}
}

// ParsePolicy reads a policy from "column=strategy" pairs separated by commas
func ParsePolicy(s string) (Policy, error) {
	policy := Policy{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		column, name, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid policy entry %q, expected column=strategy", pair)
		}
		strategy, err := ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		policy[strings.TrimSpace(column)] = strategy
	}
	return policy, nil
}

// Strategy returns the strategy for a column
func (p Policy) Strategy(column string) Strategy {
	if s, ok := p[column]; ok {
		return s
	}
	return StrategyDropRow
}

// Resolve fills or drops missing cells according to the cleaner's policy.
// Fill values are computed once from the input table before any row is
// dropped and are returned per column.
func (c *DataCleaner) Resolve(t *model.Table) (*model.Table, map[string]model.Value, []model.CleaningOperation, error) {
	columns := make([]string, 0, len(c.policy))
	for column := range c.policy {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	fills := make(map[string]model.Value)
	for _, column := range columns {
		strategy := c.policy[column]
		if strategy == StrategyDropRow {
			if !t.HasColumn(column) {
				return nil, nil, nil, fmt.Errorf("imputation policy: %w: %s", model.ErrMissingColumn, column)
			}
			continue
		}

		values, err := t.Column(column)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("imputation policy: %w", err)
		}
		fill, err := fillValue(values, strategy)
		if errors.Is(err, errNoValues) {
			c.logger.Warn("Cannot impute column without values, rows with missing cells will be dropped",
				zap.String("column", column),
				zap.String("strategy", strategy.String()))
			continue
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to compute %s of %s: %w", strategy, column, err)
		}
		fills[column] = fill
	}

	out := model.NewTable(t.Columns...)
	out.Rows = make([]model.Row, 0, len(t.Rows))
	audit := newAuditor(StageImpute, t)

	for i, row := range t.Rows {
		if column, drop := firstUnresolvable(t.Columns, row, fills); drop {
			audit.rowDropped(i, row, column, model.OpDroppedMissing, "missing_"+column)
			continue
		}

		next := row.Clone()
		for j, column := range t.Columns {
			if !next[j].IsMissing() {
				continue
			}
			fill := fills[column]
			operation := model.OpImputedMedian
			if c.policy[column] == StrategyMode {
				operation = model.OpImputedMode
			}
			audit.cellChanged(i, row, column, next[j], fill, operation, "missing_"+column)
			next[j] = fill
		}
		out.Rows = append(out.Rows, next)
	}

	return out, fills, audit.ops, nil
}

// firstUnresolvable returns the first column whose missing cell has no fill value
func firstUnresolvable(columns []string, row model.Row, fills map[string]model.Value) (string, bool) {
	for j, column := range columns {
		if !row[j].IsMissing() {
			continue
		}
		if _, ok := fills[column]; !ok {
			return column, true
		}
	}
	return "", false
}

// fillValue computes the substitute for a column under a strategy
func fillValue(values []model.Value, strategy Strategy) (model.Value, error) {
	switch strategy {
	case StrategyMedian:
		nums, err := numericValues(values)
		if err != nil {
			return model.Missing(), err
		}
		m, err := median(nums)
		if err != nil {
			return model.Missing(), err
		}
		if allInts(values) && m == math.Trunc(m) {
			return model.Int(int64(m)), nil
		}
		return model.Float(m), nil
	case StrategyMode:
		return mode(values)
	default:
		return model.Missing(), fmt.Errorf("strategy %s has no fill value", strategy)
	}
}

func allInts(values []model.Value) bool {
	for _, v := range values {
		if !v.IsMissing() && v.Kind() != model.KindInt {
			return false
		}
	}
	return true
}
