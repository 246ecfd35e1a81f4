package insights

import "sort"

// FrequencyEntry is one distinct text value and how often it occurs.
type FrequencyEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnFrequency is the value distribution of a text column. Entries is
// the full list sorted by count descending; TopEntries holds at most the
// first three of them.
type ColumnFrequency struct {
	Header     string           `json:"header"`
	Entries    []FrequencyEntry `json:"entries"`
	TopEntries []FrequencyEntry `json:"topEntries"`
}

const topEntryLimit = 3

// AnalyzeCategorical builds frequency tables for every header holding text
// cells. Values with equal counts keep the order they were first seen in.
func AnalyzeCategorical(t *Table) []ColumnFrequency {
	var out []ColumnFrequency
	for i, h := range t.Headers {
		var entries []FrequencyEntry
		pos := make(map[string]int)
		for _, row := range t.Rows {
			c := row[i]
			if !c.IsText() {
				continue
			}
			if p, ok := pos[c.Str]; ok {
				entries[p].Count++
				continue
			}
			pos[c.Str] = len(entries)
			entries = append(entries, FrequencyEntry{Value: c.Str, Count: 1})
		}
		if len(entries) == 0 {
			continue
		}
		sort.SliceStable(entries, func(a, b int) bool { return entries[a].Count > entries[b].Count })
		top := entries
		if len(top) > topEntryLimit {
			top = top[:topEntryLimit]
		}
		out = append(out, ColumnFrequency{
			Header:     h,
			Entries:    entries,
			TopEntries: append([]FrequencyEntry(nil), top...),
		})
	}
	return out
}

// CountOf returns the frequency of value, or 0.
func (f ColumnFrequency) CountOf(value string) int {
	for _, e := range f.Entries {
		if e.Value == value {
			return e.Count
		}
	}
	return 0
}
