package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/KingdomVR/kvr-go-database/internal/api/apierr"
)

// APIKey guards administrative endpoints behind a static key supplied in
// the X-API-Key header. An empty configured key disables the endpoints
// entirely rather than leaving them open.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
