package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

func Recover(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Printf("panic cid=%s %s %s: %v\n%s", GetCorrelationID(r.Context()), r.Method, r.URL.Path, rec, debug.Stack())
					WriteError(w, r, http.StatusInternalServerError, "internal server error", "")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
