package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"dochub/internal/auth"
	"dochub/internal/httputil"
)

// Auth validates the bearer token and stores the caller's identity and
// role in the request context. Requests without a valid token get 401.
func Auth(tokens *auth.TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithCaller(r, claims.Subject, claims.Role))
		})
	}
}
