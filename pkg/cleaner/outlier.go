// pkg/cleaner/outlier.go
package cleaner

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// DefaultOutlierSigma is the number of standard deviations above the mean at
// which a quantity is treated as an outlier
const DefaultOutlierSigma = 3.0

// FilterOutliers drops rows whose quantity is at or above mean + sigma*stddev.
// The statistics are computed once over all rows of the input using the sample
// standard deviation. When every quantity is the same the bound equals the mean
// and every row is dropped. With fewer than two rows the standard deviation is
// undefined, so the table is returned unchanged and the bound is +Inf.
func (c *DataCleaner) FilterOutliers(t *model.Table) (*model.Table, float64, []model.CleaningOperation, error) {
	idx, err := t.ColumnIndex(model.ColQuantity)
	if err != nil {
		return nil, 0, nil, err
	}

	quantities := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		q, ok := row[idx].Float()
		if !ok {
			return nil, 0, nil, fmt.Errorf("%w: row %d has non-numeric quantity %q", ErrIntegrity, i, row[idx].String())
		}
		quantities[i] = q
	}

	if len(quantities) < 2 {
		c.logger.Debug("Outlier filter skipped, standard deviation undefined",
			zap.Int("rows", len(quantities)))
		return t.Clone(), math.Inf(1), nil, nil
	}

	mean, std := stat.MeanStdDev(quantities, nil)
	bound := mean + c.sigma*std

	c.logger.Debug("Outlier bound computed",
		zap.Float64("mean", mean),
		zap.Float64("stddev", std),
		zap.Float64("bound", bound))

	audit := newAuditor(StageOutliers, t)
	out := t.Filter(func(i int, row model.Row) bool {
		if quantities[i] >= bound {
			audit.rowDropped(i, row, model.ColQuantity, model.OpDroppedOutlier,
				fmt.Sprintf("quantity %s >= bound %.4f", row[idx].String(), bound))
			return false
		}
		return true
	})

	return out, bound, audit.ops, nil
}
