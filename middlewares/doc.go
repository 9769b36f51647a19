// Package middlewares holds the HTTP middleware stack of the dispatch service.
//
// RequestID tags every request with an ID (reusing X-Request-ID or
// X-Correlation-ID from a proxy) and RequestIDExtractor puts it on every log line.
// Logging writes one line per request; with WithLoggingStarted it also logs the
// start, since a dispatch stream can stay open for minutes. Recover converts
// panics into a *PanicError that the error handler renders as a 500. CORS lets
// browser dashboards call the API and read X-Request-ID and X-Dispatch-ID.
//
// Order matters:
//
//	mailcast.WithMiddleware(
//		middlewares.CORS(middlewares.WithAllowOrigins(origins...)),
//		middlewares.RequestID(),
//		middlewares.Logging(middlewares.WithLoggingStarted()),
//		middlewares.Recover(),
//	)
//
// There is no timeout middleware: a stream lasts as long as its batch and is
// cancelled when the client disconnects. Authentication happens upstream.
package middlewares
