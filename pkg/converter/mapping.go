// pkg/converter/mapping.go
package converter

import (
	"fmt"
	"time"
)

// Layouts accepted for purchase dates, most specific first
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2006/01/02",
	"20060102",
}

// DetectTimeFormat analyzes a value to determine its timestamp format
func DetectTimeFormat(value string) string {
	for _, format := range timeLayouts {
		_, err := time.Parse(format, value)
		if err == nil {
			return format
		}
	}

	return ""
}

// ParseTime parses a date or timestamp in any of the accepted layouts
func ParseTime(value string) (time.Time, error) {
	format := DetectTimeFormat(value)
	if format == "" {
		return time.Time{}, fmt.Errorf("cannot parse %q as date", value)
	}
	return time.Parse(format, value)
}
