// Package app wires the insightdesk HTTP service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from INSIGHT_* environment variables and an optional YAML file
//  2. Initialize slog logging and OpenTelemetry (tracing plus a Prometheus registry)
//  3. Open the transaction log (memory or SQLite, optionally mirrored to Google Sheets)
//  4. Create the optional integrations: Supabase storage, Stripe, headless Chrome
//  5. Build the services and the chi router
//  6. Start the HTTP server and the session sweeper
//
// Integrations whose configuration is missing are left out. Their endpoints
// answer 503 and readiness reports them as disabled.
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout, stops the websocket hub, closes the
// transaction log and flushes telemetry.
package app
