package middleware

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/lifestyle/internal/logging"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/apierrors"
)

// Recover turns a panic into a 500. The panic value is logged, never sent.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.From(r.Context(), nil).Error(r.Context(), "panic",
					"path", r.URL.Path,
					"reason", rec,
				)
				apierrors.WriteError(w, r, fmt.Errorf("panic: %v", rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
