package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

// RequestIDHeader carries the correlation ID between client and server.
const RequestIDHeader = "X-Request-Id"

// RequestID attaches a correlation ID to every request: the client's
// header value when supplied, a fresh UUID otherwise. The ID is stored in
// the context and echoed back in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}
