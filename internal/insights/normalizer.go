package insights

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numericPattern = regexp.MustCompile(`^-?[\d,.]+$`)

// Normalize builds a Table from raw rows.
//
// Headers are the union of all row keys in first-seen order, trimmed. Keys
// that trim to nothing become column_<n> (1-based key position), and a
// header that collides with an earlier one gets a _<k> suffix. Rows whose
// cells are all null are dropped; if none remain an *EmptyInputError is
// returned.
func Normalize(raw []RawRow) (*Table, error) {
	var keys []string
	seen := make(map[string]struct{})
	for _, row := range raw {
		for _, f := range row {
			if _, ok := seen[f.Key]; ok {
				continue
			}
			seen[f.Key] = struct{}{}
			keys = append(keys, f.Key)
		}
	}

	headers := headerNames(keys)
	t := &Table{Headers: headers}
	for _, r := range raw {
		row := make(Row, len(keys))
		empty := true
		for i, key := range keys {
			v, _ := r.Get(key)
			row[i] = NormalizeValue(v)
			if !row[i].IsNull() {
				empty = false
			}
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, &EmptyInputError{Received: len(raw)}
	}
	return t, nil
}

func headerNames(keys []string) []string {
	headers := make([]string, len(keys))
	used := make(map[string]int, len(keys))
	for i, key := range keys {
		name := strings.TrimSpace(key)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := used[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := used[name]; !taken {
					break
				}
			}
			used[base] = n
		}
		used[name] = 1
		headers[i] = name
	}
	return headers
}

// NormalizeValue converts a raw value into a Cell.
//
// Finite numbers are kept, non-finite ones become null. Strings are trimmed;
// empty strings become null and strings that look numeric (optional minus,
// digits, grouping commas, decimal point) become numbers once the commas are
// stripped. Timestamps are rendered as dates and any other value is
// stringified and then treated like a string.
func NormalizeValue(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Null()
	case Cell:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case string:
		return normalizeString(x)
	case json.Number:
		return normalizeString(x.String())
	case time.Time:
		if x.IsZero() {
			return Null()
		}
		return Text(FormatTime(x))
	case *time.Time:
		if x == nil {
			return Null()
		}
		return NormalizeValue(*x)
	case fmt.Stringer:
		return normalizeString(x.String())
	default:
		return normalizeString(fmt.Sprint(x))
	}
}

func normalizeString(s string) Cell {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Null()
	}
	if !numericPattern.MatchString(trimmed) {
		return Text(trimmed)
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Text(trimmed)
	}
	return Number(n)
}

// FormatTime renders t as a date when it falls on midnight, otherwise as RFC 3339.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
