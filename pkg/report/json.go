// pkg/report/json.go
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gidiolindo/Portfolio/pkg/analysis"
	"github.com/gidiolindo/Portfolio/pkg/cleaner"
)

// Document is the JSON form of a pipeline run
type Document struct {
	RunID              string            `json:"run_id,omitempty"`
	GeneratedAt        time.Time         `json:"generated_at"`
	Stages             []stageJSON       `json:"stages,omitempty"`
	Fills              map[string]string `json:"fills,omitempty"`
	OutlierBound       *float64          `json:"outlier_bound"`
	Orders             int               `json:"orders"`
	DeliveredOrders    int               `json:"delivered_orders"`
	TotalRevenue       float64           `json:"total_revenue"`
	RevenueByCategory  analysis.Series   `json:"revenue_by_category"`
	QuantityByProduct  analysis.Series   `json:"quantity_by_product"`
	RevenueByDay       []dayJSON         `json:"revenue_by_day"`
	StatusDistribution analysis.Series   `json:"status_distribution"`
}

type dayJSON struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
}

// NewDocument builds the JSON document of a run. result may be nil.
// A no-op outlier filter is written as a null bound.
func NewDocument(result *cleaner.Result, s *analysis.Summary) *Document {
	doc := &Document{
		GeneratedAt:        time.Now().UTC(),
		Orders:             s.Orders,
		DeliveredOrders:    s.DeliveredOrders,
		TotalRevenue:       s.TotalRevenue,
		RevenueByCategory:  nonNilSeries(s.RevenueByCategory),
		QuantityByProduct:  nonNilSeries(s.QuantityByProduct),
		StatusDistribution: nonNilSeries(s.StatusDistribution),
		RevenueByDay:       make([]dayJSON, 0, len(s.RevenueByDay)),
	}
	for _, p := range s.RevenueByDay {
		doc.RevenueByDay = append(doc.RevenueByDay, dayJSON{Day: p.Day.Format("2006-01-02"), Revenue: p.Revenue})
	}

	if result == nil {
		return doc
	}
	doc.RunID = result.RunID
	for _, st := range result.Stages {
		doc.Stages = append(doc.Stages, newStageJSON(StageMetrics(st)))
	}
	if len(result.Fills) > 0 {
		doc.Fills = make(map[string]string, len(result.Fills))
		for col, v := range result.Fills {
			doc.Fills[col] = v.String()
		}
	}
	if !math.IsInf(result.OutlierBound, 0) && !math.IsNaN(result.OutlierBound) {
		bound := result.OutlierBound
		doc.OutlierBound = &bound
	}
	return doc
}

// WriteJSON writes the run document as indented JSON
func WriteJSON(w io.Writer, result *cleaner.Result, s *analysis.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(result, s)); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

func nonNilSeries(s analysis.Series) analysis.Series {
	if s == nil {
		return analysis.Series{}
	}
	return s
}
