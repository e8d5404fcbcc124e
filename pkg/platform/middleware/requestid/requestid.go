// Package requestid assigns every request a unique ID for log correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"stakeyard/pkg/requestcontext"
)

// Header is the inbound/outbound request ID header.
const Header = "X-Request-Id"

// Middleware reuses a caller-supplied request ID or generates one, stores it
// in the context, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
