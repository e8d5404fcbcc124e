package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"stakeyard/pkg/requestcontext"
)

// RequireAdminToken gates routes reserved for the controlling authority.
// Requests carrying the expected X-Admin-Token are marked as admin in the
// context so the service layer can re-check authority without knowing HTTP.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			// Constant-time comparison to prevent timing attacks
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"admin_only","error_description":"admin token required"}`))
				return
			}

			ctx := requestcontext.WithAdmin(r.Context(), true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
