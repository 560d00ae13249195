package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
)

// Headers carrying the internal credentials.
const (
	APIKeyHeader    = "X-API-Key"
	TimeTokenHeader = "X-Time-Token"
)

// TimeTokenTTL is how long a generated time token is accepted.
const TimeTokenTTL = 5 * time.Minute

// deriveKey turns an API key of any length into a fernet key.
func deriveKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}

// GenerateTimeToken creates a short-lived fernet token bound to apiKey.
// Callers send it in the X-Time-Token header next to X-API-Key.
func GenerateTimeToken(apiKey string) string {
	tok, err := fernet.EncryptAndSign([]byte(strconv.FormatInt(time.Now().Unix(), 10)), deriveKey(apiKey))
	if err != nil {
		log.Printf("failed to generate time token: %v", err)
		return ""
	}
	return string(tok)
}

// APIKeyMiddleware guards machine-to-machine endpoints with apiKey.
// A request must carry apiKey in X-API-Key and a time token generated from it within the
// last TimeTokenTTL in X-Time-Token. An empty apiKey rejects every request.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return apiKeyHandler(apiKey, next)
	}
}

func apiKeyHandler(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey == "" {
			response.RespondError(w, http.StatusInternalServerError, "authentication failed", "No internal API key configured")
			return
		}

		provided := r.Header.Get(APIKeyHeader)
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "authentication failed", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "authentication failed", "Invalid API key")
			return
		}

		token := r.Header.Get(TimeTokenHeader)
		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "authentication failed", "Missing Time token")
			return
		}
		if fernet.VerifyAndDecrypt([]byte(token), TimeTokenTTL, []*fernet.Key{deriveKey(apiKey)}) == nil {
			response.RespondError(w, http.StatusUnauthorized, "authentication failed", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}
