package tablesource

import "errors"

// UnsupportedFileTypeError is returned for files that are not CSV, XLSX or XLS.
type UnsupportedFileTypeError struct {
	Name string
}

func (e *UnsupportedFileTypeError) Error() string {
	return "Unsupported file type. Upload CSV/XLS/XLSX."
}

// IsUnsupportedFileType reports whether err is, or wraps, an UnsupportedFileTypeError.
func IsUnsupportedFileType(err error) bool {
	var target *UnsupportedFileTypeError
	return errors.As(err, &target)
}

// ErrNoSheets is returned for workbooks without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")
