package insights

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Cell.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Cell is a normalized table value: null, a finite number or trimmed text.
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
}

// Null returns the empty cell.
func Null() Cell { return Cell{} }

// Number returns a numeric cell, or a null cell when v is not finite.
func Number(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}
	}
	return Cell{Kind: KindNumber, Num: v}
}

// Text returns a text cell holding s as-is.
func Text(s string) Cell { return Cell{Kind: KindText, Str: s} }

func (c Cell) IsNull() bool { return c.Kind == KindNull }
func (c Cell) IsText() bool { return c.Kind == KindText }

// Float returns the numeric payload and whether the cell is a number.
func (c Cell) Float() (float64, bool) {
	if c.Kind != KindNumber {
		return 0, false
	}
	return c.Num, true
}

// Value converts the cell back to a plain Go value (nil, float64 or string).
func (c Cell) Value() any {
	switch c.Kind {
	case KindNumber:
		return c.Num
	case KindText:
		return c.Str
	default:
		return nil
	}
}

// String renders the cell for text exports. Null renders as "".
func (c Cell) String() string {
	switch c.Kind {
	case KindNumber:
		return FormatNumber(c.Num)
	case KindText:
		return c.Str
	default:
		return ""
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

// FormatNumber renders v in its shortest decimal form ("1200", "0.5", "-3.25").
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
