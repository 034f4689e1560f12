// pkg/cleaner/recorder.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// Recorder persists the audit trail of a cleaning run
type Recorder interface {
	Record(ctx context.Context, operations []model.CleaningOperation) error
}

// MemoryRecorder keeps cleaning operations in memory
type MemoryRecorder struct {
	mu  sync.Mutex
	ops []model.CleaningOperation
}

// NewMemoryRecorder creates an empty in-memory recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends operations
func (r *MemoryRecorder) Record(_ context.Context, operations []model.CleaningOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, operations...)
	return nil
}

// Operations returns a copy of everything recorded so far
func (r *MemoryRecorder) Operations() []model.CleaningOperation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CleaningOperation, len(r.ops))
	copy(out, r.ops)
	return out
}

// PostgresRecorder batch inserts cleaning operations into an audit table
type PostgresRecorder struct {
	db      *sqlx.DB
	table   string
	logger  *zap.Logger
	timeout time.Duration
}

// NewPostgresRecorder creates a recorder writing to the given table and
// ensures the table exists
func NewPostgresRecorder(ctx context.Context, db *sqlx.DB, table string, logger *zap.Logger) (*PostgresRecorder, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if table == "" {
		return nil, errors.New("audit table name cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &PostgresRecorder{
		db:      db,
		table:   table,
		logger:  logger,
		timeout: 30 * time.Second,
	}
	if err := r.setupAuditTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup audit table: %w", err)
	}
	return r, nil
}

// WithTimeout sets the timeout applied to each Record call
func (r *PostgresRecorder) WithTimeout(timeout time.Duration) *PostgresRecorder {
	r.timeout = timeout
	return r
}

func (r *PostgresRecorder) setupAuditTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			stage TEXT NOT NULL,
			column_name TEXT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			row_identifier TEXT NOT NULL,
			cleaning_operation TEXT NOT NULL,
			cleaning_reason TEXT NOT NULL,
			cleaned_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`, pq.QuoteIdentifier(r.table))
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}

	r.logger.Info("Ensured audit table exists", zap.String("table", r.table))
	return nil
}

// Record inserts all operations in a single transaction
func (r *PostgresRecorder) Record(ctx context.Context, operations []model.CleaningOperation) (err error) {
	if len(operations) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(`
		INSERT INTO %s
		(run_id, stage, column_name, original_value, new_value,
		 row_identifier, cleaning_operation, cleaning_reason, cleaned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, pq.QuoteIdentifier(r.table)))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range operations {
		if _, err = stmt.ExecContext(ctx,
			op.RunID,
			op.Stage,
			op.ColumnName,
			toNullableString(op.OriginalValue),
			op.NewValue,
			op.RowIdentifier,
			op.Operation,
			op.Reason,
			op.CleanedAt,
		); err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Recorded cleaning operations", zap.Int("count", len(operations)))
	return nil
}

// toNullableString renders an original value for a nullable text column
func toNullableString(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", val)
	}
}
