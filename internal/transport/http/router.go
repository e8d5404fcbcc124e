// Package httpapi assembles the HTTP surface of the ledger: authenticated
// user routes, the admin surface, the custody webhook, and the operational
// endpoints.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stakeyard/internal/staking/handler"
	adminmw "stakeyard/pkg/platform/middleware/admin"
	"stakeyard/pkg/platform/middleware/auth"
	"stakeyard/pkg/platform/middleware/requestid"
	"stakeyard/pkg/platform/middleware/requesttime"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Staking    *handler.Handler
	Verifier   auth.TokenVerifier
	AdminToken string
	Logger     *slog.Logger
}

// NewRouter builds the full route tree. The request timestamp is captured
// once per request by middleware so every ledger operation inside the call
// sees the same clock reading.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			deps.Staking.RegisterPublic(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(deps.Verifier, deps.Logger))
			deps.Staking.Register(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(deps.AdminToken, deps.Logger))
			deps.Staking.RegisterWebhooks(r)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(deps.AdminToken, deps.Logger))
			deps.Staking.RegisterAdmin(r)
		})
	})

	return r
}
