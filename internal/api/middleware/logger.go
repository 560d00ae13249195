package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// sanitize strips CR/LF from user-supplied values to prevent log injection.
var sanitize = strings.NewReplacer("\n", "", "\r", "").Replace

// Logger is a middleware that logs HTTP requests with their request id, status and duration.
// Must run after chi's RequestID middleware for the id to be present.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		reqID := chimiddleware.GetReqID(r.Context())
		if reqID == "" {
			reqID = "-"
		}

		//nolint:gosec // G706: method, path and user id are sanitized to strip newlines/carriage-returns before logging.
		log.Printf(
			"[%s] %s %s %d %s user=%s",
			sanitize(reqID),
			sanitize(r.Method),
			sanitize(r.URL.Path),
			wrapped.statusCode,
			time.Since(start),
			sanitize(r.Header.Get(UserIDHeader)),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
