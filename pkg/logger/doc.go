// Package logger builds the service's *slog.Logger.
//
// NewFromConfig picks JSON (default) or text output and the minimum level from
// LOG_LEVEL and LOG_FORMAT. When SENTRY_DSN is set, records at SENTRY_LEVEL (warn) and up go to
// Sentry as logs and errors open Sentry issues. A Sentry init failure falls back
// to local output only. Call FlushSentry before the process exits.
//
// Context extractors add request-scoped attributes at log time:
//
//	log := logger.NewFromConfig(os.Stdout, cfg.Log,
//		middlewares.RequestIDExtractor(),
//		handlers.DispatchIDExtractor(),
//	)
//	log.InfoContext(ctx, "dispatch started")
//	// {"level":"INFO","msg":"dispatch started","request_id":"01J...","dispatch_id":"5f0c..."}
//
// WithExtractors applies the same enrichment to any slog.Handler.
package logger
