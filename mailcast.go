package mailcast

import (
	"github.com/dmitrymomot/mailcast/internal"
	"github.com/dmitrymomot/mailcast/pkg/logger"
)

// HTTP core. The implementation lives in internal; these names are the public surface.
type (
	App          = internal.App
	Option       = internal.Option
	RunOption    = internal.RunOption
	HealthOption = internal.HealthOption

	Router       = internal.Router
	Handler      = internal.Handler
	HandlerFunc  = internal.HandlerFunc
	Middleware   = internal.Middleware
	ErrorHandler = internal.ErrorHandler

	// Context is a context.Context cancelled when the client disconnects.
	Context          = internal.Context
	ResponseWriter   = internal.ResponseWriter
	ValidationErrors = internal.ValidationErrors

	// HTTPError is rendered by the ErrorHandler with its status and code.
	HTTPError       = internal.HTTPError
	HTTPErrorOption = internal.HTTPErrorOption

	// ContextExtractor adds request-scoped attributes such as request_id to log records.
	ContextExtractor = logger.ContextExtractor
)

// App construction.
var (
	New                = internal.New
	WithMiddleware     = internal.WithMiddleware
	WithHandlers       = internal.WithHandlers
	WithErrorHandler   = internal.WithErrorHandler
	WithLogger         = internal.WithLogger
	WithMaxBodySize    = internal.WithMaxBodySize
	WithHealthChecks   = internal.WithHealthChecks
	WithLivenessPath   = internal.WithLivenessPath
	WithReadinessPath  = internal.WithReadinessPath
	WithReadinessCheck = internal.WithReadinessCheck

	// WithOptionalReadinessCheck registers a check that only degrades readiness.
	WithOptionalReadinessCheck = internal.WithOptionalReadinessCheck
)

// Server runtime, passed to App.Run.
var (
	Logger          = internal.Logger
	WriteTimeout    = internal.WriteTimeout
	ShutdownTimeout = internal.ShutdownTimeout
	ShutdownHook    = internal.ShutdownHook
	WithContext     = internal.WithContext
)

// HTTP errors returned from handlers.
var (
	NewHTTPError       = internal.NewHTTPError
	ErrBadRequest      = internal.ErrBadRequest
	ErrRequestTooLarge = internal.ErrRequestTooLarge
	ErrInternal        = internal.ErrInternal
	WithError          = internal.WithError
	WithErrorCode      = internal.WithErrorCode
	WithFields         = internal.WithFields
	AsHTTPError        = internal.AsHTTPError
)
