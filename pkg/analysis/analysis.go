// pkg/analysis/analysis.go
package analysis

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// Point is one entry of a keyed aggregate
type Point struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Series is a keyed aggregate sorted by value, largest first
type Series []Point

// Get returns the value stored under key
func (s Series) Get(key string) (float64, bool) {
	for _, p := range s {
		if p.Key == key {
			return p.Value, true
		}
	}
	return 0, false
}

// Sum returns the total over all points
func (s Series) Sum() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}

// DayPoint is the delivered revenue of one calendar day
type DayPoint struct {
	Day     time.Time `json:"day"`
	Revenue float64   `json:"revenue"`
}

// Summary holds the aggregates computed over a cleaned order set
type Summary struct {
	Cleaned            []model.Order `json:"-"`
	Orders             int           `json:"orders"`
	DeliveredOrders    int           `json:"delivered_orders"`
	TotalRevenue       float64       `json:"total_revenue"`
	RevenueByCategory  Series        `json:"revenue_by_category"`
	QuantityByProduct  Series        `json:"quantity_by_product"`
	RevenueByDay       []DayPoint    `json:"revenue_by_day"`
	StatusDistribution Series        `json:"status_distribution"`
}

// Calculator computes delivery-gated revenue aggregates
type Calculator struct {
	deliveredToken string
	logger         *zap.Logger
}

// NewCalculator creates a calculator. An empty token selects "Entregue".
func NewCalculator(deliveredToken string, logger *zap.Logger) *Calculator {
	if deliveredToken == "" {
		deliveredToken = model.StatusDelivered
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{deliveredToken: deliveredToken, logger: logger}
}

// DeliveredToken returns the status that counts toward revenue
func (c *Calculator) DeliveredToken() string {
	return c.deliveredToken
}

// ComputeTable projects a cleaned table onto orders and computes the summary
func (c *Calculator) ComputeTable(t *model.Table) (*Summary, error) {
	orders, err := model.OrdersFromTable(t)
	if err != nil {
		return nil, fmt.Errorf("failed to read cleaned orders: %w", err)
	}
	return c.Compute(orders), nil
}

// Compute aggregates the orders. Only delivered orders contribute to
// revenue and quantity aggregates; the day range runs from the first to the
// last delivered day.
func (c *Calculator) Compute(orders []model.Order) *Summary {
	s := &Summary{
		Cleaned: orders,
		Orders:  len(orders),
	}

	byCategory := make(map[string]float64)
	byProduct := make(map[string]float64)
	byDay := make(map[time.Time]float64)
	byStatus := make(map[string]float64)
	var first, last time.Time

	for _, o := range orders {
		byStatus[o.DeliveryStatus]++

		if !o.IsDelivered(c.deliveredToken) {
			continue
		}
		day := truncateDay(o.PurchaseDate)
		if s.DeliveredOrders == 0 || day.Before(first) {
			first = day
		}
		if s.DeliveredOrders == 0 || day.After(last) {
			last = day
		}

		total := o.Total()
		s.DeliveredOrders++
		s.TotalRevenue += total
		byCategory[o.Category] += total
		byProduct[o.Product] += o.Quantity
		byDay[day] += total
	}

	s.RevenueByCategory = sortedSeries(byCategory)
	s.QuantityByProduct = sortedSeries(byProduct)
	s.StatusDistribution = sortedSeries(byStatus)
	if s.DeliveredOrders > 0 {
		s.RevenueByDay = dayRange(first, last, byDay)
	}

	c.logger.Debug("Computed order summary",
		zap.Int("orders", s.Orders),
		zap.Int("delivered", s.DeliveredOrders),
		zap.Float64("revenue", s.TotalRevenue),
		zap.Int("days", len(s.RevenueByDay)))
	return s
}

// sortedSeries orders by value descending, breaking ties by key
func sortedSeries(m map[string]float64) Series {
	s := make(Series, 0, len(m))
	for k, v := range m {
		s = append(s, Point{Key: k, Value: v})
	}
	sort.Slice(s, func(i, j int) bool {
		if s[i].Value != s[j].Value {
			return s[i].Value > s[j].Value
		}
		return s[i].Key < s[j].Key
	})
	return s
}

// dayRange emits one bucket per calendar day in [first, last]
func dayRange(first, last time.Time, revenue map[time.Time]float64) []DayPoint {
	days := int(last.Sub(first).Hours()/24) + 1
	points := make([]DayPoint, 0, days)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		points = append(points, DayPoint{Day: d, Revenue: revenue[d]})
	}
	return points
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
