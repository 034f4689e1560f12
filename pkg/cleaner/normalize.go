// pkg/cleaner/normalize.go
package cleaner

import (
	"strings"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// NormalizeColumn coerces every cell of a column to the target type.
// Unparseable cells become the missing marker and are audited; the result has
// the same rows in the same order as the input.
func (c *DataCleaner) NormalizeColumn(
	t *model.Table,
	column string,
	target model.ColumnType,
) (*model.Table, []model.CleaningOperation, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return nil, nil, err
	}

	out := t.Clone()
	audit := newAuditor(StageNormalize, t)

	for i, row := range out.Rows {
		original := row[idx]
		coerced, err := c.converter.Coerce(original, target)
		if err != nil {
			c.logger.Debug("Unparseable cell converted to missing",
				zap.String("column", column),
				zap.String("row", audit.rowIdentifier(i, row)),
				zap.Error(err))
			audit.cellChanged(i, row, column, original, coerced, model.OpCoercedToMissing, reasonUnparseable(target))
		} else if original.Kind() != coerced.Kind() && !original.IsMissing() {
			if coerced.IsMissing() {
				audit.cellChanged(i, row, column, original, coerced, model.OpCoercedToMissing, "null_token")
			} else {
				audit.cellChanged(i, row, column, original, coerced, model.OpTypeCoercion, "converted_to_"+target.String())
			}
		}
		row[idx] = coerced
	}

	return out, audit.ops, nil
}

// NormalizeSchema applies NormalizeColumn to every column declared in the
// metadata, so numeric and date columns hold no text representations
func (c *DataCleaner) NormalizeSchema(
	t *model.Table,
	meta *model.TableMetadata,
) (*model.Table, []model.CleaningOperation, error) {
	var ops []model.CleaningOperation
	current := t
	for _, col := range meta.Columns {
		next, colOps, err := c.NormalizeColumn(current, col.Name, col.DataType)
		if err != nil {
			return nil, nil, err
		}
		current = next
		ops = append(ops, colOps...)
	}
	if current == t {
		current = t.Clone()
	}
	return current, ops, nil
}

func reasonUnparseable(target model.ColumnType) string {
	return "unparseable_" + target.String()
}

// ReconcileCategory rewrites the category of every row with a product to the
// category that product maps to. Source files may carry a category column that
// disagrees with the product; each correction is audited.
func (c *DataCleaner) ReconcileCategory(t *model.Table) (*model.Table, []model.CleaningOperation, error) {
	productIdx, err := t.ColumnIndex(model.ColProduct)
	if err != nil {
		return nil, nil, err
	}
	categoryIdx, err := t.ColumnIndex(model.ColCategory)
	if err != nil {
		return nil, nil, err
	}

	out := t.Clone()
	audit := newAuditor(StageNormalize, t)
	for i, row := range out.Rows {
		expected, ok := expectedCategory(row[productIdx])
		if !ok {
			continue
		}
		current := row[categoryIdx]
		if !current.IsMissing() && strings.TrimSpace(current.String()) == expected {
			continue
		}
		derived := model.Text(expected)
		audit.cellChanged(i, row, model.ColCategory, current, derived, model.OpCategoryRederived,
			"category_from_product")
		row[categoryIdx] = derived
	}

	if len(audit.ops) > 0 {
		c.logger.Info("Category corrected from product", zap.Int("rows", len(audit.ops)))
	}
	return out, audit.ops, nil
}

// expectedCategory returns the category a product cell maps to
func expectedCategory(product model.Value) (string, bool) {
	if product.IsMissing() {
		return "", false
	}
	return model.CategoryFor(strings.TrimSpace(product.String())), true
}
