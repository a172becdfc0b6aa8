package middleware

import "net/http"

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware left to right: the first argument becomes the
// outermost wrapper and sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		wrapped := final
		for i := len(mws) - 1; i >= 0; i-- {
			wrapped = mws[i](wrapped)
		}
		return wrapped
	}
}
