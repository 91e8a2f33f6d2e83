package middleware

import (
	"context"
	"net/http"
	"time"
)

// RequestTimeout caps how long a single request may run, independently of
// whatever timeouts the downstream capabilities carry themselves. Handlers
// see the deadline through the request context.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
