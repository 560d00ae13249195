// Package middleware provides the HTTP middleware mounted by the router.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/validation"
)

// IDParam is the route parameter holding an entity id, as in /api/transaction/{uuid}.
const IDParam = "uuid"

// ValidateUUIDMiddleware rejects a request with 400 before it reaches the handler when the
// IDParam path parameter is missing or not a UUID, so handlers never query with a bad id.
//
//	r.Route("/{uuid}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUUIDMiddleware)
//	    r.Get("/", handler.GetTransaction)
//	})
func ValidateUUIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, IDParam)
		if id == "" {
			response.RespondError(w, http.StatusBadRequest, "id is required", "")
			return
		}

		if err := validation.ValidateUUID(id); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid id", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
