// pkg/model/value.go
package model

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies what a cell currently holds
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindInt
	KindFloat
	KindDate
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Value is a single table cell. The zero value is the missing marker.
type Value struct {
	kind Kind
	text string
	num  float64
	i    int64
	date time.Time
}

// Missing returns the missing marker
func Missing() Value { return Value{} }

// Text wraps a string cell
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Int wraps an integer cell
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a decimal cell
func Float(f float64) Value { return Value{kind: KindFloat, num: f} }

// Date wraps a date cell, truncated to the calendar day in UTC
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Kind returns the kind of value held
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing marker
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// IsNumeric reports whether v holds an int or a float
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Float returns the numeric value as float64. ok is false for non-numeric cells.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.num, true
	default:
		return 0, false
	}
}

// Int returns the value as int64. Floats are accepted only when integral.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.num == float64(int64(v.num)) {
			return int64(v.num), true
		}
	}
	return 0, false
}

// Str returns the text payload. ok is false for non-text cells.
func (v Value) Str() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Time returns the date payload. ok is false for non-date cells.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// Key returns a canonical representation used for equality, ordering of
// categorical values and row fingerprints. Numbers compare by value, so
// Int(2) and Float(2) share a key.
func (v Value) Key() string {
	switch v.kind {
	case KindMissing:
		return "\x00"
	case KindText:
		return "s:" + v.text
	case KindInt:
		return "n:" + strconv.FormatFloat(float64(v.i), 'g', -1, 64)
	case KindFloat:
		f := v.num
		if f == 0 {
			f = 0 // -0 and 0 are equal
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	case KindDate:
		return "d:" + v.date.Format("2006-01-02")
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same value
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		a, _ := v.Float()
		b, _ := o.Float()
		return a == b
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindMissing:
		return true
	case KindText:
		return v.text == o.text
	case KindDate:
		return v.date.Equal(o.date)
	default:
		return false
	}
}

// String renders the cell for display and CSV export
func (v Value) String() string {
	switch v.kind {
	case KindMissing:
		return ""
	case KindText:
		return v.text
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.Format("2006-01-02")
	default:
		return ""
	}
}

// Interface returns the cell as a plain Go value (nil for missing)
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindText:
		return v.text
	case KindInt:
		return v.i
	case KindFloat:
		return v.num
	case KindDate:
		return v.date
	default:
		return nil
	}
}
