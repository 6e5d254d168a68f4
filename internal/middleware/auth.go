package middleware

import (
	"net/http"
	"strings"

	"github.com/tonpad/deposit-backend/internal/api/httpx"
	"github.com/tonpad/deposit-backend/internal/auth"
)

// AdminAuth gates a route on a valid bearer token from tm.
func AdminAuth(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
				return
			}
			if _, err := tm.Parse(tokenStr); err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
