package workbook

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the dynamic type of a spreadsheet cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindInt
	KindFloat
	KindString
	KindDateTime
	KindBool
	KindError
)

// Cell is a tagged-union value read from a spreadsheet, modelling the dynamic
// typing of spreadsheet cells without panicking on mismatched access.
type Cell struct {
	Kind   Kind
	Int    int64
	Float  float64
	Str    string
	Time   time.Time
	Bool   bool
	ErrMsg string
}

// AsDecimal returns the cell's numeric value as a decimal, if it has one.
// Strings that parse cleanly as a number are also accepted, since spreadsheet
// exports sometimes store numeric-looking values as text.
func (c Cell) AsDecimal() (decimal.Decimal, bool) {
	switch c.Kind {
	case KindInt:
		return decimal.NewFromInt(c.Int), true
	case KindFloat:
		return decimal.NewFromFloat(c.Float), true
	case KindString:
		s := strings.TrimSpace(c.Str)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// AsInt returns the cell's value as an integer, if it has one.
func (c Cell) AsInt() (int, bool) {
	switch c.Kind {
	case KindInt:
		return int(c.Int), true
	case KindFloat:
		if c.Float == float64(int64(c.Float)) {
			return int(c.Float), true
		}
		return 0, false
	case KindString:
		s := strings.TrimSpace(c.Str)
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsString returns the cell's value rendered as a string, if it has one.
func (c Cell) AsString() (string, bool) {
	switch c.Kind {
	case KindString:
		return c.Str, true
	case KindInt:
		return strconv.FormatInt(c.Int, 10), true
	case KindFloat:
		return strconv.FormatFloat(c.Float, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(c.Bool), true
	default:
		return "", false
	}
}

// AsTime returns the cell's value as a time, if it has one.
func (c Cell) AsTime() (time.Time, bool) {
	if c.Kind == KindDateTime {
		return c.Time, true
	}
	return time.Time{}, false
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty
}
