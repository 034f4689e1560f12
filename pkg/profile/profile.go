// pkg/profile/profile.go
package profile

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gidiolindo/Portfolio/pkg/converter"
	"github.com/gidiolindo/Portfolio/pkg/model"
)

// KindMixed is reported for columns holding more than one cell kind
const KindMixed = "mixed"

// Profile describes a raw table before cleaning
type Profile struct {
	Rows          int             `json:"rows"`
	DuplicateRows int             `json:"duplicate_rows"`
	Columns       []ColumnProfile `json:"columns"`
}

// ColumnProfile describes one column
type ColumnProfile struct {
	Name        string              `json:"name"`
	Nominal     string              `json:"nominal_type"`
	Kind        string              `json:"kind"`
	Kinds       map[string]int      `json:"kinds"`
	NonMissing  int                 `json:"non_missing"`
	Missing     int                 `json:"missing"`
	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
}

// NumericSummary holds count, moments and quartiles of the cells that parse
// as numbers
type NumericSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"p25"`
	Q50   float64 `json:"p50"`
	Q75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// CategoricalSummary holds count, distinct values and the most frequent one
type CategoricalSummary struct {
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// Column returns the profile of a column by name
func (p *Profile) Column(name string) (ColumnProfile, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// Build profiles every column of t. Numeric columns of meta get a numeric
// summary, all others a categorical one. Null tokens count as missing.
func Build(t *model.Table, meta *model.TableMetadata) *Profile {
	tc := converter.NewTypeConverter(zap.NewNop())
	p := &Profile{
		Rows:          t.Len(),
		DuplicateRows: countDuplicates(t),
		Columns:       make([]ColumnProfile, 0, len(t.Columns)),
	}

	for ci, name := range t.Columns {
		cp := ColumnProfile{
			Name:  name,
			Kinds: make(map[string]int),
		}
		nominal := model.TypeString
		if meta != nil {
			if col := meta.GetColumnByName(name); col != nil {
				nominal = col.DataType
			}
		}
		cp.Nominal = nominal.String()

		var numbers []float64
		values := make([]model.Value, 0, len(t.Rows))
		for _, row := range t.Rows {
			v := row[ci]
			cp.Kinds[v.Kind().String()]++
			if s, ok := v.Str(); v.IsMissing() || (ok && tc.IsNullToken(s)) {
				cp.Missing++
				continue
			}
			values = append(values, v)
			if nominal.IsNumeric() {
				if n, err := tc.Coerce(v, model.TypeFloat); err == nil && !n.IsMissing() {
					f, _ := n.Float()
					numbers = append(numbers, f)
				}
			}
		}
		cp.NonMissing = len(values)
		cp.Kind = dominantKind(cp.Kinds)

		if nominal.IsNumeric() {
			cp.Numeric = describeNumeric(numbers)
		} else {
			cp.Categorical = describeCategorical(values)
		}
		p.Columns = append(p.Columns, cp)
	}
	return p
}

func dominantKind(kinds map[string]int) string {
	present := make([]string, 0, len(kinds))
	for k := range kinds {
		if k != model.KindMissing.String() {
			present = append(present, k)
		}
	}
	switch len(present) {
	case 0:
		return model.KindMissing.String()
	case 1:
		return present[0]
	default:
		return KindMixed
	}
}

func describeNumeric(x []float64) *NumericSummary {
	if len(x) == 0 {
		return &NumericSummary{}
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	s := &NumericSummary{
		Count: len(x),
		Min:   floats.Min(sorted),
		Max:   floats.Max(sorted),
		Q25:   quantile(sorted, 0.25),
		Q50:   quantile(sorted, 0.50),
		Q75:   quantile(sorted, 0.75),
	}
	if len(x) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(x, nil)
	} else {
		s.Mean = x[0]
	}
	return s
}

// quantile interpolates linearly between closest ranks, h = (n-1)p.
// sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

func describeCategorical(values []model.Value) *CategoricalSummary {
	s := &CategoricalSummary{Count: len(values)}
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, v := range values {
		key := v.String()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	s.Unique = len(counts)
	for _, key := range order {
		if counts[key] > s.Freq {
			s.Top, s.Freq = key, counts[key]
		}
	}
	return s
}

// countDuplicates counts rows equal to an earlier row, comparing raw cells
func countDuplicates(t *model.Table) int {
	seen := make(map[string]struct{}, t.Len())
	dups := 0
	var b strings.Builder
	for _, row := range t.Rows {
		b.Reset()
		for _, v := range row {
			b.WriteString(v.Key())
			b.WriteByte(0x1f)
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}
