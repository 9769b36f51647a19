// Package internal provides the core types and implementation of the mailcast HTTP service.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/mailcast"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Orchestrates HTTP routing, health endpoints, and graceful shutdown
//   - Context: Provides request/response access, JSON binding, and logging helpers
//   - Router: Interface handlers use to declare routes with HTTP methods and grouping
//   - Handler: Interface implemented by types that declare routes on a router
//   - HandlerFunc: Signature for individual route handlers that return errors
//   - Middleware: Wraps handlers to add cross-cutting concerns
//   - ErrorHandler: Renders errors returned before the response was written
//   - ResponseWriter: Tracks status and size and forwards Flush
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context. Cancellation follows the request:
// when the client disconnects, c.Done() is closed.
//
//	func (h *Handler) dispatch(c internal.Context) error {
//	    summary, err := h.dispatcher.Run(c, job, dispatch.NewStreamEncoder(c.ResponseWriter()))
//	    ...
//	}
//
// # Handler Pattern
//
// Handlers implement the Handler interface and declare routes:
//
//	func (h *DispatchHandler) Routes(r internal.Router) {
//	    r.POST("/api/dispatch", h.dispatch)
//	}
//
// Handlers receive dependencies via constructor injection, not context helpers.
//
// # Binding
//
// BindJSON decodes the body (bounded by WithMaxBodySize) and validates it with
// `validate` struct tags. Rule violations are returned as ValidationErrors, not as error:
//
//	verrs, err := c.BindJSON(&req)
//	if err != nil {
//	    return internal.ErrBadRequest("invalid JSON body", internal.WithError(err))
//	}
//	if len(verrs) > 0 {
//	    return internal.ErrBadRequest("invalid request", internal.WithFields(verrs.Fields()))
//	}
//
// # Error Handling
//
// Errors returned from handlers go to the ErrorHandler, unless the response has
// already been written. Streaming handlers log their own failures once the first
// byte is out; a late error is logged and dropped.
//
// # Server Runtime
//
//	err := app.Run(":8080",
//	    internal.Logger(log),
//	    internal.WriteTimeout(0),
//	    internal.ShutdownHook(flushSentry),
//	)
//
// The write timeout defaults to 0 so long progress streams are not cut by the server.
// On SIGINT or SIGTERM the server stops accepting connections, waits for in-flight
// requests up to the shutdown timeout, and then runs shutdown hooks in order.
// Streams still open when the timeout expires see their context cancelled.
//
// Unknown routes and wrong methods are rendered by the ErrorHandler as 404 and 405.
package internal
