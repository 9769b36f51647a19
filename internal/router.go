package internal

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// HandlerFunc serves one request. A returned error goes to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error

// Handler declares its routes on a Router.
//
//	func (h *Dispatch) Routes(r mailcast.Router) {
//		r.POST("/api/dispatch", h.dispatch)
//	}
type Handler interface {
	Routes(r Router)
}

// Router is the routing surface handed to a Handler.
// Route middleware runs in the order given, inside the app-wide stack.
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)

	// Group scopes Use to the routes declared inside fn.
	Group(fn func(r Router))
	Use(mw ...Middleware)
}

type routerAdapter struct {
	router chi.Router
	app    *App
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Get(path, r.app.wrapHandler(chain(h, mw)))
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Post(path, r.app.wrapHandler(chain(h, mw)))
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(cr chi.Router) {
		fn(&routerAdapter{router: cr, app: r.app})
	})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.router.Use(r.app.adaptMiddleware(m))
	}
}

// chain applies mw so that mw[0] is outermost.
func chain(h HandlerFunc, mw []Middleware) HandlerFunc {
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	return h
}

// adaptMiddleware bridges a Middleware into chi's stack. Each layer gets its own
// Context; the response writer and values stored with Set reach the next layer
// through c.ResponseWriter() and c.Request().
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.wrapHandler(mw(func(c Context) error {
			next.ServeHTTP(c.ResponseWriter(), c.Request())
			return nil
		}))
	}
}
