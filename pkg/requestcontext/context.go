// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services only read them. Keeping the package
// free of net/http lets the staking service stay transport-agnostic while
// still knowing who is acting and what "now" is for the whole call.
package requestcontext

import (
	"context"
	"time"

	"stakeyard/pkg/domain"
)

type (
	actingAccountKey struct{}
	adminKey         struct{}
	requestIDKey     struct{}
	requestTimeKey   struct{}
)

// ActingAccount retrieves the authenticated account the call is acting as.
// Returns the zero value when the call is unauthenticated.
func ActingAccount(ctx context.Context) domain.AccountName {
	if acct, ok := ctx.Value(actingAccountKey{}).(domain.AccountName); ok {
		return acct
	}
	return ""
}

// WithActingAccount injects the acting account into the context.
func WithActingAccount(ctx context.Context, acct domain.AccountName) context.Context {
	return context.WithValue(ctx, actingAccountKey{}, acct)
}

// IsAdmin reports whether the call carries controlling-authority privileges.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(adminKey{}).(bool)
	return admin
}

// WithAdmin marks the context as carrying admin privileges.
func WithAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, adminKey{}, admin)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from the context. Every read within
// one call sees the same instant; accrual math depends on that. Falls back to
// time.Now() for non-HTTP contexts such as workers and tests that did not
// inject a time.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Used by the request-time
// middleware and by tests that need deterministic clocks.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
