// Package services implements the business logic layer of insightdesk. It
// sits between the HTTP handlers and the collaborators (table source,
// artifact storage, payment gateway, renderer, transaction log).
//
// # Services
//
//	- AnalysisService: runs the insight pipeline for a paid upload, builds
//	  the cleaned exports and dashboard PDF, pushes them to storage and
//	  moves the transaction through paid -> completed (or failed)
//	- PaymentService: creates checkout sessions and opens a transaction
//	  record once a payment is confirmed
//	- HistoryService: Basic-auth guarded listing and xlsx export of the
//	  transaction log
//	- StorageService: signed upload URLs for browser-side uploads
//	- HealthService: liveness, readiness and version information
//
// # Common Service Pattern
//
// Services receive their collaborators and a *slog.Logger through the
// constructor, take a context.Context on every blocking call and wrap errors
// with fmt.Errorf("...: %w", err). Sentinel errors live in errors.go and are
// mapped to HTTP responses by the transport layer.
//
// Lifecycle events are published through the WebSocketHub interface so the
// package does not depend on the websocket implementation.
package services
