// Package httpserver provides the HTTP/HTTPS server of the hub.
//
// NewRouter registers the views of package handler (and any extra views)
// on a router and wraps it in the middleware chain:
//
//	Recover -> RequestID -> Identify -> RateLimit -> Audit -> router
//
// Identify only records who the caller is; whether a view requires
// authentication is decided per view by the view adapter. Views that allow
// CORS get origin-checked headers and a preflight route from AllowCORS.
//
// Server wraps net/http.Server with optional TLS whose certificate is hot
// reloaded by package tlsroots.
package httpserver
