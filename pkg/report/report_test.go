package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/gidiolindo/Portfolio/pkg/analysis"
	"github.com/gidiolindo/Portfolio/pkg/cleaner"
	"github.com/gidiolindo/Portfolio/pkg/model"
	"github.com/gidiolindo/Portfolio/pkg/profile"
)

func testSummary() *analysis.Summary {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	orders := []model.Order{
		{OrderID: 1001, PurchaseDate: day(1), CustomerID: 101, Product: "Notebook", Category: model.CategoryElectronics,
			Quantity: 1, UnitPrice: 8500, DeliveryStatus: model.StatusDelivered},
		{OrderID: 1002, PurchaseDate: day(3), CustomerID: 102, Product: "SmartWatch", Category: model.CategoryAccessories,
			Quantity: 2, UnitPrice: 2100, DeliveryStatus: model.StatusDelivered},
		{OrderID: 1003, PurchaseDate: day(2), CustomerID: 103, Product: "Smartphone", Category: model.CategoryElectronics,
			Quantity: 3, UnitPrice: 5999.9, DeliveryStatus: model.StatusPending},
	}
	return analysis.NewCalculator("", nil).Compute(orders)
}

func testResult() *cleaner.Result {
	table := model.NewTable(model.ColOrderID)
	table.Rows = []model.Row{{model.Int(1)}, {model.Int(2)}}
	return &cleaner.Result{
		RunID: "run-1",
		Table: table,
		Operations: []model.CleaningOperation{
			{Operation: model.OpCoercedToMissing, Stage: cleaner.StageNormalize},
			{Operation: model.OpTypeCoercion, Stage: cleaner.StageNormalize},
			{Operation: model.OpImputedMedian, Stage: cleaner.StageImpute},
			{Operation: model.OpDroppedMissing, Stage: cleaner.StageImpute},
			{Operation: model.OpDroppedDuplicate, Stage: cleaner.StageDeduplicate},
		},
		Stages: []cleaner.StageReport{
			{Stage: cleaner.StageNormalize, RowsIn: 4, RowsOut: 4, CellsChanged: 2},
			{Stage: cleaner.StageImpute, RowsIn: 4, RowsOut: 3, Dropped: 1, CellsChanged: 1},
			{Stage: cleaner.StageDeduplicate, RowsIn: 3, RowsOut: 2, Dropped: 1},
			{Stage: cleaner.StageOutliers, RowsIn: 2, RowsOut: 2},
		},
		Fills:        map[string]model.Value{model.ColQuantity: model.Int(2), model.ColDeliveryStatus: model.Text("Entregue")},
		OutlierBound: math.Inf(1),
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{5.5, "R$ 5,50"},
		{999.999, "R$ 1.000,00"},
		{1234.56, "R$ 1.234,56"},
		{8500, "R$ 8.500,00"},
		{1234567.891, "R$ 1.234.567,89"},
		{-42.1, "-R$ 42,10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in), "amount %v", tt.in)
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "2", formatNumber(2))
	assert.Equal(t, "2.5", formatNumber(2.5))
	assert.Equal(t, "none", formatBound(math.Inf(1)))
	assert.Equal(t, "52.3850", formatBound(52.385))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.50 KB", formatBytes(1536))
	assert.Equal(t, "1h 2m 3s", formatDuration(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "2m 5s", formatDuration(125*time.Second))
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "3.00 MB", formatBytes(3<<20))
}

func TestRunMetrics(t *testing.T) {
	m := NewRunMetrics("synthetic", zaptest.NewLogger(t))
	m.RecordLoad(4)
	m.RecordResult(testResult())
	assert.Equal(t, cleaner.ErrorCategoryStructural, m.RecordError(fmt.Errorf("load: %w", model.ErrEmptyDataset)))
	assert.Equal(t, cleaner.ErrorCategoryNone, m.RecordError(nil))
	m.Complete()

	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, int64(4), m.RowsRead)
	assert.Equal(t, int64(2), m.RowsWritten)
	require.Len(t, m.Stages, 4)
	assert.Equal(t, 1, m.OperationCounts[model.OpDroppedDuplicate])
	assert.Equal(t, 1, m.ErrorCounts[cleaner.ErrorCategoryUnparseable])
	assert.Equal(t, 1, m.ErrorCounts[cleaner.ErrorCategoryUnresolvableMissing])
	assert.Equal(t, 1, m.ErrorCounts[cleaner.ErrorCategoryStructural])
	assert.Greater(t, m.PeakMemoryUsage, int64(0))

	dist := m.GetErrorDistribution()
	assert.InDelta(t, 100.0/3, dist["Unparseable"], 1e-9)

	report := m.GenerateMetricsReport()
	assert.Contains(t, report, "Run ID:                  run-1")
	assert.Contains(t, report, "Rows Dropped:            2 (50.0%)")
	assert.Contains(t, report, "- impute: 4 -> 3 rows, 1 dropped, 1 cells changed")
	assert.Contains(t, report, "- row_dropped_duplicate: 1")
	assert.Contains(t, report, "- Structural: 1 (33.3%)")

	raw, err := m.ToJSON()
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded["runId"])
	assert.Equal(t, float64(2), decoded["rowsWritten"])
	assert.Len(t, decoded["stages"], 4)
}

func TestRunMetricsIntegrityIssues(t *testing.T) {
	result := testResult()
	result.Issues = []cleaner.IntegrityIssue{{IssueType: "DUPLICATE_ROW"}, {IssueType: "MISSING_VALUE"}}

	m := NewRunMetrics("csv", nil)
	m.RecordResult(result)
	m.RecordResult(nil)
	assert.Equal(t, 2, m.IntegrityIssues)
	assert.Equal(t, 2, m.ErrorCounts[cleaner.ErrorCategoryIntegrity])
	assert.Equal(t, cleaner.ErrorCategoryIntegrity, m.RecordError(cleaner.ErrIntegrity))
	assert.Equal(t, cleaner.ErrorCategoryUnknown, m.RecordError(errors.New("boom")))
	assert.Zero(t, m.CalculateThroughput())
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf).WithColor(false)

	table := model.NewTable(model.ColQuantity, model.ColDeliveryStatus)
	table.Rows = []model.Row{
		{model.Text("1"), model.Text("Entregue")},
		{model.Missing(), model.Text("Pendente")},
	}
	c.PrintProfile(profile.Build(table, model.OrdersMetadata()))
	c.PrintRun(testResult())
	c.PrintSummary(testSummary())

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "=== Dataset profile ===")
	assert.Contains(t, out, "Duplicate rows: 0")
	assert.Contains(t, out, "=== Numeric columns ===")
	assert.Contains(t, out, "=== Categorical columns ===")
	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "deduplicate")
	assert.Contains(t, out, "Outlier bound (quantity): none")
	assert.Contains(t, out, "Total revenue: R$ 12.700,00")
	assert.Contains(t, out, "R$ 8.500,00")
	assert.Contains(t, out, "2025-03-02")
	assert.NotContains(t, out, "integrity issues")

	buf.Reset()
	result := testResult()
	result.Issues = []cleaner.IntegrityIssue{{IssueType: "OUTLIER_REMAINING", ColumnName: model.ColQuantity, AffectedRows: 1}}
	c.PrintRun(result)
	assert.Contains(t, buf.String(), "1 integrity issues")
	assert.Contains(t, buf.String(), "OUTLIER_REMAINING")

	buf.Reset()
	m := NewRunMetrics("synthetic", nil)
	m.RecordResult(testResult())
	c.PrintMetrics(m)
	assert.Contains(t, buf.String(), "Cleaning Metrics Report")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, WriteWorkbook(path, testSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetCleaned, SheetByCategory, SheetByProduct, SheetByDay, SheetStatus}, f.GetSheetList())

	rows, err := f.GetRows(SheetCleaned)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "total", rows[0][8])
	assert.Equal(t, "1001", rows[1][0])
	assert.Equal(t, "2025-03-01", rows[1][1])
	assert.Equal(t, "8500", rows[1][8])

	rows, err = f.GetRows(SheetByDay)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"2025-03-02", "0"}, rows[2])

	rows, err = f.GetRows(SheetByCategory)
	require.NoError(t, err)
	assert.Equal(t, []string{"category", "revenue"}, rows[0])
	assert.Equal(t, []string{model.CategoryElectronics, "8500"}, rows[1])
}

func TestWriteCleanedCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCleanedCSV(&buf, testSummary().Cleaned))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "order_id,purchase_date,customer_id,product,category,quantity,unit_price,delivery_status,total", lines[0])
	assert.Equal(t, "1001,2025-03-01,101,Notebook,Eletrônicos,1,8500.00,Entregue,8500.00", lines[1])
	assert.Equal(t, "1003,2025-03-02,103,Smartphone,Eletrônicos,3,5999.90,Pendente,17999.70", lines[3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testResult(), testSummary()))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc["run_id"])
	assert.Nil(t, doc["outlier_bound"])
	assert.Equal(t, 12700.0, doc["total_revenue"])
	assert.Equal(t, map[string]interface{}{"quantity": "2", "delivery_status": "Entregue"}, doc["fills"])

	days := doc["revenue_by_day"].([]interface{})
	require.Len(t, days, 3)
	assert.Equal(t, map[string]interface{}{"day": "2025-03-02", "revenue": 0.0}, days[1])

	result := testResult()
	result.OutlierBound = 3.5
	doc2 := NewDocument(result, testSummary())
	require.NotNil(t, doc2.OutlierBound)
	assert.Equal(t, 3.5, *doc2.OutlierBound)

	doc3 := NewDocument(nil, analysis.NewCalculator("", nil).Compute(nil))
	assert.Empty(t, doc3.RunID)
	assert.NotNil(t, doc3.RevenueByCategory)
	raw, err := json.Marshal(doc3)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"revenue_by_category":[]`))
}
