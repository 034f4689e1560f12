// pkg/report/format.go
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatCurrency renders an amount in reais: "R$ 1.234,56"
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents%100)
}

// formatNumber trims trailing zeros: 2 → "2", 2.5 → "2.5"
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatBound renders the outlier bound, which is +Inf when the filter was a no-op
func formatBound(bound float64) string {
	if math.IsInf(bound, 1) {
		return "none"
	}
	return strconv.FormatFloat(bound, 'f', 4, 64)
}

// formatBytes renders a memory figure in binary units: 1536 → "1.50 KB"
func formatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	size := float64(n)
	for _, unit := range []string{"KB", "MB", "GB", "TB"} {
		size /= 1024
		if size < 1024 || unit == "TB" {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
	}
	return ""
}

// formatDuration renders stage timings. Cleaning stages usually finish in
// milliseconds, so sub-second durations keep millisecond precision.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm %ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
}
