package middleware

import (
	"context"
	"net/http"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/validation"
)

// UserIDHeader carries the verified user identity set by the upstream auth gateway.
const UserIDHeader = "X-User-ID"

type contextKey string

const userIDKey contextKey = "userID"

// UserIdentity requires a valid UUID in the X-User-ID header and stores it in the request
// context. Returns 401 Unauthorized when the header is missing and 400 Bad Request when it
// is not a UUID.
func UserIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)

		if userID == "" {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrMissingUserID.Error(), "")
			return
		}

		if err := validation.ValidateUUID(userID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid user id", err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id stored by UserIdentity.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
