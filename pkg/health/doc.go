// Package health serves liveness and readiness probes as JSON.
//
// A check is any func(context.Context) error, such as the SMTP sender's
// Healthcheck or the attachment storage Healthcheck. Checks run in parallel
// under one timeout and are reported by name:
//
//	{"status":"degraded","checks":{"smtp":{"status":"ok","durationMs":41},
//	 "storage":{"status":"unavailable","error":"storage: access denied","durationMs":12}}}
//
// A failing required check makes the service unavailable (503). A failing
// optional check only degrades it (200): the storage bucket is optional because
// only attachments referenced by key depend on it.
package health
