// pkg/cleaner/result.go
package cleaner

import (
	"time"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// StageReport summarises one stage of a cleaning run
type StageReport struct {
	Stage        string
	RowsIn       int
	RowsOut      int
	Dropped      int
	CellsChanged int
	Duration     time.Duration
}

// Result represents the outcome of a cleaning run
type Result struct {
	RunID        string
	Table        *model.Table
	Operations   []model.CleaningOperation
	Stages       []StageReport
	Fills        map[string]model.Value
	OutlierBound float64
	Issues       []IntegrityIssue
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

func newResult(runID string) *Result {
	return &Result{
		RunID:      runID,
		Operations: make([]model.CleaningOperation, 0),
		Stages:     make([]StageReport, 0, 4),
		Fills:      make(map[string]model.Value),
		StartTime:  time.Now(),
	}
}

// addStage stamps the run ID on a stage's operations and records its report
func (r *Result) addStage(stage string, in, out *model.Table, ops []model.CleaningOperation, started time.Time) {
	for i := range ops {
		ops[i].RunID = r.RunID
	}
	r.Operations = append(r.Operations, ops...)

	dropped := countDrops(ops)
	r.Stages = append(r.Stages, StageReport{
		Stage:        stage,
		RowsIn:       in.Len(),
		RowsOut:      out.Len(),
		Dropped:      dropped,
		CellsChanged: len(ops) - dropped,
		Duration:     time.Since(started),
	})
	r.Table = out
}

// complete marks the run as finished and calculates duration
func (r *Result) complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// DroppedRows returns the number of rows removed across all stages
func (r *Result) DroppedRows() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Dropped
	}
	return n
}

// OperationCounts returns the number of audit records per operation kind
func (r *Result) OperationCounts() map[string]int {
	counts := make(map[string]int)
	for _, op := range r.Operations {
		counts[op.Operation]++
	}
	return counts
}

// Stage returns the report of a stage by name
func (r *Result) Stage(name string) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageReport{}, false
}
