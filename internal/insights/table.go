package insights

// Field is one key/value pair of a raw row, in source order.
type Field struct {
	Key   string
	Value any
}

// RawRow is a loosely-typed row as produced by a table source. Rows of the
// same input may carry different key sets.
type RawRow []Field

// Get returns the first value stored under key.
func (r RawRow) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Row holds one cell per table header, aligned by index.
type Row []Cell

// Table is the normalized, rectangular form of an input. It never contains a
// row whose cells are all null.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Index returns the position of header, or -1.
func (t *Table) Index(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Column returns the cells of the column at index i.
func (t *Table) Column(i int) []Cell {
	out := make([]Cell, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// RawRows converts the table back into raw rows keyed by header.
func (t *Table) RawRows() []RawRow {
	out := make([]RawRow, len(t.Rows))
	for r, row := range t.Rows {
		raw := make(RawRow, len(t.Headers))
		for i, h := range t.Headers {
			raw[i] = Field{Key: h, Value: row[i].Value()}
		}
		out[r] = raw
	}
	return out
}

// Records renders the table as string records, header first, for CSV export.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Headers...))
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, c := range row {
			rec[i] = c.String()
		}
		out = append(out, rec)
	}
	return out
}
