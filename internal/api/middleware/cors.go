package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS allows the dashboard origins to call the API with the identity and internal
// credential headers. Retry-After is exposed so clients can back off on 503.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			UserIDHeader,
			APIKeyHeader,
			TimeTokenHeader,
		},
		ExposedHeaders:   []string{"Content-Type", "Retry-After", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
