// Package insights turns loosely-typed tabular rows into an InsightReport.
//
// The pipeline normalizes raw rows into a rectangular Table of typed cells,
// then runs five independent analyzers over it (quality, numeric,
// categorical, trend and correlation) and finally composes a narrative
// summary from their outputs. Everything in this package is pure: no I/O,
// no package-level mutable state, safe to call from concurrent requests.
package insights
