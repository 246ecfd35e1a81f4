// Package render turns an InsightReport into dashboard output: chart data
// for clients, a self-contained HTML snapshot, and a PDF printed from that
// snapshot by headless Chrome.
//
// Display fallbacks live here rather than in the analyzers. When no numeric
// column has outliers the outlier chart switches to a volatility risk score,
// and a missing trend is drawn as a "No time-series found" placeholder.
package render
