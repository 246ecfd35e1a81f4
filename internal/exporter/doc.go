// Package exporter writes the artifacts of an analysis session.
//
// CSVWriter handles delimited output, with an optional UTF-8 BOM for Excel
// compatibility. WorkbookWriter builds xlsx files with excelize: the cleaned
// dataset ("Cleaned Data" sheet) and the transaction history ("History"
// sheet).
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter("data/exports")
//	data, err := csvWriter.CleanedCSV(session.Report.Table)
//
//	books := exporter.NewWorkbookWriter(logger)
//	xlsx, err := books.CleanedWorkbook(session.Report.Table)
package exporter
