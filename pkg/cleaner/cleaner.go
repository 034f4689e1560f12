// pkg/cleaner/cleaner.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/converter"
	"github.com/gidiolindo/Portfolio/pkg/model"
)

// DataCleaner runs the data-quality stages over a sales order table
type DataCleaner struct {
	logger    *zap.Logger
	recorder  Recorder
	policy    Policy
	sigma     float64
	converter *converter.TypeConverter
	metadata  *model.TableMetadata
}

// NewDataCleaner creates a new DataCleaner with the default policy, a three
// sigma outlier bound and an in-memory audit recorder
func NewDataCleaner(logger *zap.Logger) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &DataCleaner{
		logger:    logger,
		recorder:  NewMemoryRecorder(),
		policy:    DefaultPolicy(),
		sigma:     DefaultOutlierSigma,
		converter: converter.NewTypeConverter(logger.Named("converter")),
		metadata:  model.OrdersMetadata(),
	}, nil
}

// WithRecorder sets the audit sink
func (c *DataCleaner) WithRecorder(recorder Recorder) *DataCleaner {
	if recorder != nil {
		c.recorder = recorder
	}
	return c
}

// WithPolicy sets the imputation policy
func (c *DataCleaner) WithPolicy(policy Policy) *DataCleaner {
	c.policy = policy
	return c
}

// WithSigma sets the outlier multiplier
func (c *DataCleaner) WithSigma(sigma float64) *DataCleaner {
	c.sigma = sigma
	return c
}

// WithConverter sets the type converter used by the normalizer
func (c *DataCleaner) WithConverter(tc *converter.TypeConverter) *DataCleaner {
	if tc != nil {
		c.converter = tc
	}
	return c
}

// WithMetadata sets the schema the input is validated and normalized against
func (c *DataCleaner) WithMetadata(meta *model.TableMetadata) *DataCleaner {
	if meta != nil {
		c.metadata = meta
	}
	return c
}

// Metadata returns the schema used by the cleaner
func (c *DataCleaner) Metadata() *model.TableMetadata {
	return c.metadata
}

// Clean runs normalization, missing-value resolution, deduplication and the
// outlier filter in that order. The input table is never modified.
// Structural problems abort the run with no result.
func (c *DataCleaner) Clean(ctx context.Context, input *model.Table) (*Result, error) {
	if err := c.metadata.ValidateStructure(input); err != nil {
		return nil, fmt.Errorf("failed to validate input: %w", err)
	}
	table, err := model.DeriveCategory(input)
	if err != nil {
		return nil, fmt.Errorf("failed to derive category: %w", err)
	}

	result := newResult(uuid.New().String())
	logger := c.logger.With(zap.String("run_id", result.RunID))
	logger.Info("Starting cleaning run", zap.Int("rows", input.Len()))

	// Stage 1: schema normalization
	started := time.Now()
	normalized, ops, err := c.NormalizeSchema(table, c.metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize schema: %w", err)
	}
	normalized, categoryOps, err := c.ReconcileCategory(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile category: %w", err)
	}
	ops = append(ops, categoryOps...)
	result.addStage(StageNormalize, table, normalized, ops, started)
	c.logStage(logger, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: missing values
	started = time.Now()
	resolved, fills, ops, err := c.Resolve(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve missing values: %w", err)
	}
	result.Fills = fills
	result.addStage(StageImpute, normalized, resolved, ops, started)
	c.logStage(logger, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: duplicates
	started = time.Now()
	deduplicated, ops, err := c.Deduplicate(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to remove duplicates: %w", err)
	}
	result.addStage(StageDeduplicate, resolved, deduplicated, ops, started)
	c.logStage(logger, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: outliers
	started = time.Now()
	filtered, bound, ops, err := c.FilterOutliers(deduplicated)
	if err != nil {
		return nil, fmt.Errorf("failed to filter outliers: %w", err)
	}
	result.OutlierBound = bound
	result.addStage(StageOutliers, deduplicated, filtered, ops, started)
	c.logStage(logger, result)

	result.Issues = c.Verify(filtered, c.metadata, bound)
	result.complete()

	logger.Info("Cleaning run completed",
		zap.Int("rows_in", input.Len()),
		zap.Int("rows_out", filtered.Len()),
		zap.Int("dropped", result.DroppedRows()),
		zap.Int("operations", len(result.Operations)),
		zap.Duration("duration", result.Duration))

	if len(result.Issues) > 0 {
		return result, fmt.Errorf("%w: %d issues", ErrIntegrity, len(result.Issues))
	}

	if err := c.recorder.Record(ctx, result.Operations); err != nil {
		return result, fmt.Errorf("failed to record cleaning operations: %w", err)
	}

	return result, nil
}

func (c *DataCleaner) logStage(logger *zap.Logger, result *Result) {
	s := result.Stages[len(result.Stages)-1]
	logger.Info("Stage completed",
		zap.String("stage", s.Stage),
		zap.Int("rows_in", s.RowsIn),
		zap.Int("rows_out", s.RowsOut),
		zap.Int("dropped", s.Dropped),
		zap.Int("cells_changed", s.CellsChanged),
		zap.Duration("duration", s.Duration))
}
