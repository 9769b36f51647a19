// Package handlers exposes the dispatch engine over HTTP.
//
// POST /api/dispatch validates the job and then answers with an NDJSON stream:
// one start line, one item line per filtered row, and a done line. Errors found
// before the stream starts are rendered by ErrorHandler as JSON.
package handlers
