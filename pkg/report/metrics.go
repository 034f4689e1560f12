// pkg/report/metrics.go
package report

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/cleaner"
)

// StageMetrics tracks the row flow of one cleaning stage
type StageMetrics struct {
	Stage        string
	RowsIn       int
	RowsOut      int
	Dropped      int
	CellsChanged int
	Duration     time.Duration
}

// RunMetrics tracks metrics for one pipeline run
type RunMetrics struct {
	mu              sync.Mutex
	logger          *zap.Logger
	RunID           string
	Source          string
	StartTime       time.Time
	EndTime         time.Time
	Stages          []StageMetrics
	RowsRead        int64
	RowsWritten     int64
	OperationCounts map[string]int
	ErrorCounts     map[cleaner.ErrorCategory]int
	IntegrityIssues int
	PeakMemoryUsage int64
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(source string, logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		logger:          logger,
		Source:          source,
		StartTime:       time.Now(),
		Stages:          make([]StageMetrics, 0, 4),
		OperationCounts: make(map[string]int),
		ErrorCounts:     make(map[cleaner.ErrorCategory]int),
	}
}

// RecordLoad records the number of raw rows read from the source
func (rm *RunMetrics) RecordLoad(rows int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.RowsRead = int64(rows)
	rm.sampleMemory()

	if rm.logger != nil {
		rm.logger.Info("Source loaded",
			zap.String("source", rm.Source),
			zap.Int("rows", rows))
	}
}

// RecordResult records stage flow, audit operations and integrity issues of
// a cleaning run
func (rm *RunMetrics) RecordResult(result *cleaner.Result) {
	if result == nil {
		return
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.RunID = result.RunID
	rm.Stages = rm.Stages[:0]
	for _, s := range result.Stages {
		rm.Stages = append(rm.Stages, StageMetrics(s))
	}
	if result.Table != nil {
		rm.RowsWritten = int64(result.Table.Len())
	}

	for _, op := range result.Operations {
		rm.OperationCounts[op.Operation]++
		if category := cleaner.CategoryForOperation(op); category != cleaner.ErrorCategoryNone {
			rm.ErrorCounts[category]++
		}
	}
	if n := len(result.Issues); n > 0 {
		rm.IntegrityIssues = n
		rm.ErrorCounts[cleaner.ErrorCategoryIntegrity] += n
	}
	rm.sampleMemory()
}

// RecordError increments the count for the category of err
func (rm *RunMetrics) RecordError(err error) cleaner.ErrorCategory {
	category := cleaner.CategorizeError(err)
	if category == cleaner.ErrorCategoryNone {
		return category
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.ErrorCounts[category]++

	if rm.logger != nil {
		rm.logger.Warn("Run error recorded",
			zap.String("category", category.String()),
			zap.Bool("fatal", category.Fatal()),
			zap.Error(err))
	}
	return category
}

// sampleMemory updates the peak heap usage. Callers hold the lock.
func (rm *RunMetrics) sampleMemory() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	if alloc := int64(memStats.Alloc); alloc > rm.PeakMemoryUsage {
		rm.PeakMemoryUsage = alloc
	}
}

// Complete marks the run as complete
func (rm *RunMetrics) Complete() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.EndTime = time.Now()
	rm.sampleMemory()

	if rm.logger != nil {
		rm.logger.Info("Pipeline run completed",
			zap.String("run_id", rm.RunID),
			zap.Duration("totalDuration", rm.duration()),
			zap.Int64("rowsRead", rm.RowsRead),
			zap.Int64("rowsWritten", rm.RowsWritten),
			zap.Float64("throughput", rm.throughput()))
	}
}

// Duration returns the total duration of the run
func (rm *RunMetrics) Duration() time.Duration {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.duration()
}

func (rm *RunMetrics) duration() time.Duration {
	if rm.EndTime.IsZero() {
		return time.Since(rm.StartTime)
	}
	return rm.EndTime.Sub(rm.StartTime)
}

// CalculateThroughput calculates the rows/second read by the run
func (rm *RunMetrics) CalculateThroughput() float64 {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.throughput()
}

func (rm *RunMetrics) throughput() float64 {
	seconds := rm.duration().Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(rm.RowsRead) / seconds
}

// GetErrorDistribution returns error distribution by category in percent
func (rm *RunMetrics) GetErrorDistribution() map[string]float64 {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.errorDistribution()
}

func (rm *RunMetrics) errorDistribution() map[string]float64 {
	distribution := make(map[string]float64)
	total := 0
	for _, count := range rm.ErrorCounts {
		total += count
	}
	if total == 0 {
		return distribution
	}
	for category, count := range rm.ErrorCounts {
		distribution[category.String()] = getPercentage(float64(count), float64(total))
	}
	return distribution
}

// GenerateMetricsReport creates a detailed metrics report
func (rm *RunMetrics) GenerateMetricsReport() string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	dropped := rm.RowsRead - rm.RowsWritten
	var b strings.Builder
	fmt.Fprintf(&b, `
Cleaning Metrics Report
=======================
Run ID:                  %s
Source:                  %s
Duration:                %s
Start Time:              %s
End Time:                %s

Rows Summary
------------
Rows Read:               %d
Rows Kept:               %d (%.1f%%)
Rows Dropped:            %d (%.1f%%)
Integrity Issues:        %d
Average Throughput:      %.2f rows/sec

Resource Usage
--------------
Peak Memory Usage:       %s
`,
		rm.RunID,
		rm.Source,
		formatDuration(rm.duration()),
		rm.StartTime.Format(time.RFC3339),
		rm.EndTime.Format(time.RFC3339),

		rm.RowsRead,
		rm.RowsWritten, getPercentage(float64(rm.RowsWritten), float64(rm.RowsRead)),
		dropped, getPercentage(float64(dropped), float64(rm.RowsRead)),
		rm.IntegrityIssues,
		rm.throughput(),

		formatBytes(rm.PeakMemoryUsage),
	)

	b.WriteString("\nStage Details\n-------------\n")
	for _, s := range rm.Stages {
		fmt.Fprintf(&b, "- %s: %d -> %d rows, %d dropped, %d cells changed, %s\n",
			s.Stage, s.RowsIn, s.RowsOut, s.Dropped, s.CellsChanged, formatDuration(s.Duration))
	}

	if len(rm.OperationCounts) > 0 {
		b.WriteString("\nCleaning Operations\n-------------------\n")
		ops := make([]string, 0, len(rm.OperationCounts))
		for op := range rm.OperationCounts {
			ops = append(ops, op)
		}
		sort.Strings(ops)
		for _, op := range ops {
			fmt.Fprintf(&b, "- %s: %d\n", op, rm.OperationCounts[op])
		}
	}

	if len(rm.ErrorCounts) > 0 {
		b.WriteString("\nError Distribution\n------------------\n")
		categories := make([]cleaner.ErrorCategory, 0, len(rm.ErrorCounts))
		total := 0
		for category, count := range rm.ErrorCounts {
			categories = append(categories, category)
			total += count
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
		for _, category := range categories {
			count := rm.ErrorCounts[category]
			fmt.Fprintf(&b, "- %s: %d (%.1f%%)\n", category.String(), count,
				getPercentage(float64(count), float64(total)))
		}
	}

	return b.String()
}

// getPercentage safely calculates a percentage, avoiding division by zero
func getPercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}

// ToJSON serializes metrics to JSON
func (rm *RunMetrics) ToJSON() ([]byte, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	stages := make([]stageJSON, 0, len(rm.Stages))
	for _, s := range rm.Stages {
		stages = append(stages, newStageJSON(s))
	}

	return json.Marshal(struct {
		RunID             string             `json:"runId"`
		Source            string             `json:"source"`
		Duration          string             `json:"duration"`
		RowsRead          int64              `json:"rowsRead"`
		RowsWritten       int64              `json:"rowsWritten"`
		Throughput        float64            `json:"throughput"`
		IntegrityIssues   int                `json:"integrityIssues"`
		Stages            []stageJSON        `json:"stages"`
		OperationCounts   map[string]int     `json:"operationCounts"`
		ErrorDistribution map[string]float64 `json:"errorDistribution"`
	}{
		RunID:             rm.RunID,
		Source:            rm.Source,
		Duration:          formatDuration(rm.duration()),
		RowsRead:          rm.RowsRead,
		RowsWritten:       rm.RowsWritten,
		Throughput:        rm.throughput(),
		IntegrityIssues:   rm.IntegrityIssues,
		Stages:            stages,
		OperationCounts:   rm.OperationCounts,
		ErrorDistribution: rm.errorDistribution(),
	})
}

type stageJSON struct {
	Stage        string  `json:"stage"`
	RowsIn       int     `json:"rowsIn"`
	RowsOut      int     `json:"rowsOut"`
	Dropped      int     `json:"dropped"`
	CellsChanged int     `json:"cellsChanged"`
	Seconds      float64 `json:"seconds"`
}

func newStageJSON(s StageMetrics) stageJSON {
	return stageJSON{
		Stage:        s.Stage,
		RowsIn:       s.RowsIn,
		RowsOut:      s.RowsOut,
		Dropped:      s.Dropped,
		CellsChanged: s.CellsChanged,
		Seconds:      s.Duration.Seconds(),
	}
}
