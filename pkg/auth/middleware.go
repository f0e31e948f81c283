package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/storefront/pkg/web"
)

// AdminOnly verifies the bearer token of every request and lets through only tokens whose
// email claim contains marker. The authenticated caller is stored with web.WithPrincipal.
func AdminOnly(verifier Verifier, marker string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				web.RespondError(w, logger, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				web.RespondError(w, logger, http.StatusUnauthorized, "Bearer token is required")
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Token verification failed", "error", err)
				web.RespondError(w, logger, http.StatusUnauthorized, "Invalid token")
				return
			}

			subject, _ := token.Subject()
			var email string
			if err := token.Get("email", &email); err != nil || !strings.Contains(email, marker) {
				logger.WarnContext(r.Context(), "Admin access denied", "subject", subject)
				web.RespondError(w, logger, http.StatusForbidden, "Admin access required")
				return
			}

			ctx := web.WithPrincipal(r.Context(), web.Principal{Subject: subject, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
