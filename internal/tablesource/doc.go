// Package tablesource turns uploaded CSV, XLSX and XLS files into raw rows
// for the insights pipeline. Only the first sheet of a workbook is read and
// the first row is taken as the header.
package tablesource
