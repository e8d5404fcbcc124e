package testutil

import (
	"context"
	"net/http"
	"time"

	"stakeyard/pkg/domain"
	"stakeyard/pkg/requestcontext"
)

// WithActingAccount stamps the request context with a verified acting
// account, simulating what the auth middleware would do.
func WithActingAccount(req *http.Request, account string) *http.Request {
	ctx := requestcontext.WithActingAccount(req.Context(), domain.AccountName(account))
	return req.WithContext(ctx)
}

// WithAdmin marks the request as carrying controlling-authority privileges.
func WithAdmin(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithAdmin(req.Context(), true))
}

// WithTime pins the request clock, simulating the request-time middleware.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// Ctx builds a service-call context with an acting account and pinned clock.
func Ctx(account string, now time.Time) context.Context {
	ctx := requestcontext.WithActingAccount(context.Background(), domain.AccountName(account))
	return requestcontext.WithTime(ctx, now)
}

// AdminCtx builds a service-call context with admin privileges and a pinned
// clock.
func AdminCtx(now time.Time) context.Context {
	ctx := requestcontext.WithAdmin(context.Background(), true)
	return requestcontext.WithTime(ctx, now)
}
