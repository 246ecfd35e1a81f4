// Package transactions records paid analysis transactions.
//
// A record is created when a checkout session is confirmed as paid and is
// updated once the upload it paid for has been analyzed. Three Log
// implementations are provided: MemoryLog for tests and ephemeral runs,
// SQLiteLog for persistence, and SheetsMirror, which decorates another Log
// and appends every change to a Google Sheet.
package transactions
