// Package requesttime provides middleware for request-scoped time. All
// operations within a single request use the same "now" timestamp, so a claim
// or unstake batch never reads the clock twice and gets different answers.
package requesttime

import (
	"net/http"
	"time"

	"stakeyard/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request, truncated
// to whole seconds to match the ledger's timestamp granularity, and stores it
// in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Truncate(time.Second)
		ctx := requestcontext.WithTime(r.Context(), now)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
