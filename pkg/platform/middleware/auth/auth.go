package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"stakeyard/pkg/requestcontext"

	"stakeyard/pkg/domain"
)

// TokenVerifier validates a bearer token and returns the account it was
// issued to. Verification of the signature is the boundary of authentication;
// the staking service only compares the verified account against the target.
type TokenVerifier interface {
	VerifyToken(tokenString string) (domain.AccountName, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified acting account in the context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			acct, err := verifier.VerifyToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := requestcontext.WithActingAccount(r.Context(), acct)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
