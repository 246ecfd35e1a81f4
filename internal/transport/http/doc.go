// Package http implements the HTTP handlers of the insight API.
// Handlers are a thin layer between HTTP transport and the services package:
// they parse and validate requests, call one service method and render the
// result with go-chi/render.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Collaborators
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Routes
//
//	GET  /healthz                             liveness probe for the legacy frontend
//	GET  /api/health, /api/health/ready       health and readiness
//	GET  /api/health/live, /api/version
//	POST /payments/create-checkout-session    {transactionId, successUrl, cancelUrl}
//	GET  /payments/confirm-session            ?sessionId&transactionId
//	POST /storage/create-upload               {transactionId, fileName, contentType}
//	POST /api/analyses                        multipart file + transactionId
//	GET  /api/analyses/{id}                   stored analysis
//	GET  /api/analyses/{id}/{artifact}        original, cleaned.csv, cleaned.xlsx,
//	                                          dashboard.pdf, dashboard.html
//	GET  /api/demo                            analysis of the built-in dataset
//	GET  /history/auth-check                  Basic auth
//	GET  /history/transactions                ?status&since&limit
//	GET  /history/export.xlsx
//	POST /api/client-logs                     browser log forwarding
//
// # Error Handling
//
// Every failure is rendered by errors.ErrorHandler as RFC 7807 Problem
// Details. The detail is repeated under "error" so older clients that read
// {"error": "..."} keep working:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "transactionId, successUrl, and cancelUrl are required.",
//	    "error": "transactionId, successUrl, and cancelUrl are required.",
//	    "instance": "/payments/create-checkout-session"
//	}
//
// Service sentinels are translated to API errors in errors.go before they
// reach the ErrorHandler. Payment and storage gateway failures are reported
// as 502 with a fixed message; the upstream detail is only logged.
//
// # Testing
//
// Handlers are tested with httptest against real services backed by
// in-memory collaborators, or testify mocks of the gateways.
package http
