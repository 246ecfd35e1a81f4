package tablesource

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"insightdesk/internal/insights"
)

// readXLSX returns the first sheet as text. Cells whose number format
// changes their value are read raw: plain numbers stay numbers and
// date-styled serials become dates.
func readXLSX(ctx context.Context, r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	sheet := sheets[0]

	formatted, err := sheetGrid(ctx, f, sheet)
	if err != nil {
		return nil, err
	}
	raw, err := sheetGrid(ctx, f, sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	cells := &cellDecoder{f: f, sheet: sheet, dateStyles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cells.date1904 = *props.Date1904
	}

	for i, row := range formatted {
		if i >= len(raw) {
			break
		}
		for j, shown := range row {
			if j >= len(raw[i]) || raw[i][j] == shown {
				continue
			}
			row[j] = cells.value(i+1, j+1, shown, raw[i][j])
		}
	}
	return formatted, nil
}

func sheetGrid(ctx context.Context, f *excelize.File, sheet string, opts ...excelize.Options) ([][]string, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		cols, err := rows.Columns(opts...)
		if err != nil {
			return nil, err
		}
		grid = append(grid, cols)
		if len(grid)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return grid, rows.Error()
}

type cellDecoder struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

// value picks the text for a cell whose formatted and raw values differ.
func (d *cellDecoder) value(row, col int, shown, raw string) string {
	if shown == "TRUE" || shown == "FALSE" {
		return shown
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if t, ok := insights.ParseDate(raw); ok {
			return insights.FormatTime(t)
		}
		return shown
	}
	if d.isDate(row, col) {
		if t, err := excelize.ExcelDateToTime(n, d.date1904); err == nil {
			return insights.FormatTime(t)
		}
		return shown
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func (d *cellDecoder) isDate(row, col int) bool {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	idx, err := d.f.GetCellStyle(d.sheet, ref)
	if err != nil {
		return false
	}
	if date, ok := d.dateStyles[idx]; ok {
		return date
	}
	date := false
	if style, err := d.f.GetStyle(idx); err == nil {
		if style.CustomNumFmt != nil {
			date = isDateFormatCode(*style.CustomNumFmt)
		} else {
			date = isBuiltInDateFormat(style.NumFmt)
		}
	}
	d.dateStyles[idx] = date
	return date
}

// isBuiltInDateFormat reports whether a built-in number format shows a
// calendar date. Time-only formats are not dates.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	default:
		return false
	}
}

// isDateFormatCode reports whether a custom format code has a year, day or
// month-name part outside quoted text and bracketed sections.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			b.WriteByte(c)
		}
	}
	s := strings.ToLower(b.String())
	return strings.ContainsAny(s, "yd") || strings.Contains(s, "mmm")
}
