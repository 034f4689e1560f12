// pkg/cleaner/stats.go
package cleaner

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

var errNoValues = errors.New("column has no non-missing values")

// numericValues returns the non-missing values of a column as float64
func numericValues(values []model.Value) ([]float64, error) {
	nums := make([]float64, 0, len(values))
	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, fmt.Errorf("row %d holds non-numeric %s value %q", i, v.Kind(), v.String())
		}
		nums = append(nums, f)
	}
	return nums, nil
}

// median returns the middle value after an ascending sort, or the mean of the
// two middle values for an even count
func median(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errNoValues
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// mode returns the most frequent non-missing value. Ties go to the value that
// sorts first in ascending order.
func mode(values []model.Value) (model.Value, error) {
	counts := make(map[string]int)
	first := make(map[string]model.Value)
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		k := v.Key()
		if _, seen := first[k]; !seen {
			first[k] = v
		}
		counts[k]++
	}
	if len(counts) == 0 {
		return model.Missing(), errNoValues
	}

	candidates := make([]model.Value, 0, len(first))
	for _, v := range first {
		candidates = append(candidates, v)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return compareValues(candidates[i], candidates[j]) < 0
	})

	best := candidates[0]
	for _, v := range candidates[1:] {
		if counts[v.Key()] > counts[best.Key()] {
			best = v
		}
	}
	return best, nil
}

// compareValues orders cells: missing first, then numbers, dates and text,
// each in their natural ascending order
func compareValues(a, b model.Value) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		fa, _ := a.Float()
		fb, _ := b.Float()
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		ta, _ := a.Time()
		tb, _ := b.Time()
		return ta.Compare(tb)
	case 3:
		sa, _ := a.Str()
		sb, _ := b.Str()
		return strings.Compare(sa, sb)
	default:
		return 0
	}
}

func kindRank(v model.Value) int {
	switch v.Kind() {
	case model.KindInt, model.KindFloat:
		return 1
	case model.KindDate:
		return 2
	case model.KindText:
		return 3
	default:
		return 0
	}
}
