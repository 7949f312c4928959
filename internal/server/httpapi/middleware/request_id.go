package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/lifestyle/internal/common"
)

type requestIDKey struct{}

// RequestID keeps an incoming X-Request-Id or generates one, echoes it on the
// response and stores it in the request context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(common.RequestIDHeaderName)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
				r.Header.Set(common.RequestIDHeaderName, id)
			}
			w.Header().Set(common.RequestIDHeaderName, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFrom returns the id stored by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
