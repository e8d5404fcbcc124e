// Package handler wires the staking ledger endpoints to the service layer.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stakeyard/internal/staking/models"
	"stakeyard/internal/staking/store/redisrank"
	"stakeyard/pkg/domain"
	dErrors "stakeyard/pkg/domain-errors"
	audit "stakeyard/pkg/platform/audit"
	"stakeyard/pkg/platform/httputil"
	"stakeyard/pkg/requestcontext"
)

// Service defines the ledger operations the handler exposes.
type Service interface {
	RegisterUser(ctx context.Context, user domain.AccountName) error
	GetUser(ctx context.Context, user domain.AccountName) (*models.User, []*models.StakedAsset, error)
	ListUsersByRate(ctx context.Context, limit int) ([]*models.User, error)
	HandleDeposit(ctx context.Context, notice models.DepositNotice) error
	Claim(ctx context.Context, user domain.AccountName, assetIDs []domain.AssetID) (domain.Asset, error)
	Unstake(ctx context.Context, user domain.AccountName, assetIDs []domain.AssetID) error

	SetFrozen(ctx context.Context, frozen bool) error
	SetConfig(ctx context.Context, minClaimPeriod, unstakePeriod time.Duration) error
	SetToken(ctx context.Context, contract domain.AccountName, sym domain.Symbol) error
	AddTemplates(ctx context.Context, entries []models.TemplateInput) error
	RemoveTemplates(ctx context.Context, entries []models.TemplateInput) error
	ResetUser(ctx context.Context, user domain.AccountName) error
}

// RateIndexReader reads the external rate leaderboard.
type RateIndexReader interface {
	Top(ctx context.Context, n int64) ([]redisrank.Entry, error)
}

// AuditReader lists recorded audit events.
type AuditReader interface {
	ListByUser(ctx context.Context, user string) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler wires staking endpoints to the service.
type Handler struct {
	service   Service
	rateIndex RateIndexReader
	auditor   AuditReader
	logger    *slog.Logger
}

// Option configures the handler.
type Option func(*Handler)

// WithRateIndex serves the leaderboard from the external index instead of
// the primary store.
func WithRateIndex(idx RateIndexReader) Option {
	return func(h *Handler) { h.rateIndex = idx }
}

// WithAuditReader exposes the audit trail endpoints.
func WithAuditReader(a AuditReader) Option {
	return func(h *Handler) { h.auditor = a }
}

// New constructs a staking handler with its dependencies.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Register mounts the authenticated user endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.HandleRegister)
	r.Get("/users/{user}", h.HandleGetUser)
	r.Post("/users/{user}/claims", h.HandleClaim)
	r.Post("/users/{user}/unstake", h.HandleUnstake)
	r.Get("/users/{user}/events", h.HandleUserEvents)
}

// RegisterPublic mounts endpoints that need no user identity.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/leaderboard", h.HandleLeaderboard)
}

// RegisterWebhooks mounts the custody-transfer webhook.
func (h *Handler) RegisterWebhooks(r chi.Router) {
	r.Post("/deposits", h.HandleDeposit)
}

// RegisterAdmin mounts the controlling-authority endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/frozen", h.HandleSetFrozen)
	r.Put("/config", h.HandleSetConfig)
	r.Put("/token", h.HandleSetToken)
	r.Post("/templates", h.HandleAddTemplates)
	r.Delete("/templates", h.HandleRemoveTemplates)
	r.Delete("/users/{user}", h.HandleResetUser)
	r.Get("/events", h.HandleRecentEvents)
}

// HandleRegister handles POST /v1/users.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	account := req.ParsedAccount()

	if err := h.service.RegisterUser(ctx, account); err != nil {
		h.logger.WarnContext(ctx, "register failed",
			"request_id", requestID, "user", account, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered", "request_id", requestID, "user", account)
	httputil.WriteJSON(w, http.StatusCreated, okResponse)
}

// HandleGetUser handles GET /v1/users/{user}.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := h.pathAccount(w, r)
	if !ok {
		return
	}
	user, assets, err := h.service.GetUser(ctx, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUser(user, assets))
}

// HandleClaim handles POST /v1/users/{user}/claims. An empty or missing
// asset list claims everything the user has staked.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	account, ok := h.pathAccount(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssetBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	payout, err := h.service.Claim(ctx, account, req.ParsedAssetIDs())
	if err != nil {
		h.logger.WarnContext(ctx, "claim failed",
			"request_id", requestID, "user", account, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "reward claimed",
		"request_id", requestID,
		"user", account,
		"payout", payout,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, ClaimResponse{Payout: payout.String()})
}

// HandleUnstake handles POST /v1/users/{user}/unstake.
func (h *Handler) HandleUnstake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	account, ok := h.pathAccount(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssetBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Unstake(ctx, account, req.ParsedAssetIDs()); err != nil {
		h.logger.WarnContext(ctx, "unstake failed",
			"request_id", requestID, "user", account, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "assets unstaked",
		"request_id", requestID, "user", account, "assets", len(req.AssetIDs))
	httputil.WriteJSON(w, http.StatusOK, okResponse)
}

// HandleUserEvents handles GET /v1/users/{user}/events.
func (h *Handler) HandleUserEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := h.pathAccount(w, r)
	if !ok {
		return
	}
	if h.auditor == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "audit trail not configured"))
		return
	}
	events, err := h.auditor.ListByUser(ctx, account.String())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

const defaultLeaderboardSize = 25

// HandleLeaderboard handles GET /v1/leaderboard. The external index serves
// reads when wired; otherwise the primary store's rate order is used.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 1000"))
			return
		}
		limit = n
	}

	if h.rateIndex != nil {
		entries, err := h.rateIndex.Top(ctx, int64(limit))
		if err == nil {
			out := LeaderboardResponse{Users: make([]LeaderboardEntry, 0, len(entries))}
			for _, e := range entries {
				out.Users = append(out.Users, LeaderboardEntry{
					Account:    e.Account.String(),
					HourlyRate: strconv.FormatInt(e.RateUnits, 10),
				})
			}
			httputil.WriteJSON(w, http.StatusOK, out)
			return
		}
		h.logger.WarnContext(ctx, "leaderboard index read failed, using primary store", "error", err)
	}

	users, err := h.service.ListUsersByRate(ctx, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := LeaderboardResponse{Users: make([]LeaderboardEntry, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, LeaderboardEntry{
			Account:    u.Account.String(),
			HourlyRate: u.HourlyRate.String(),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleDeposit handles POST /v1/deposits, the custody-transfer webhook.
func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	notice := req.ParsedNotice()

	if err := h.service.HandleDeposit(ctx, notice); err != nil {
		h.logger.WarnContext(ctx, "deposit rejected",
			"request_id", requestID, "from", notice.From, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "deposit processed",
		"request_id", requestID,
		"from", notice.From,
		"assets", len(notice.AssetIDs),
		"staked", notice.Kind == models.DepositStake,
	)
	httputil.WriteJSON(w, http.StatusOK, okResponse)
}

// HandleSetFrozen handles PUT /v1/admin/frozen.
func (h *Handler) HandleSetFrozen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SetFrozenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SetFrozen(ctx, req.Frozen); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "freeze flag updated", "request_id", requestID, "frozen", req.Frozen)
	httputil.WriteJSON(w, http.StatusOK, okResponse)
}

// HandleSetConfig handles PUT /v1/admin/config.
func (h *Handler) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SetConfigRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SetConfig(ctx, req.MinClaimPeriod(), req.UnstakePeriod()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "config updated", "request_id", requestID)
	httputil.WriteJSON(w, http.StatusOK, okResponse)
}

// HandleSetToken handles PUT /v1/admin/token.
func (h *Handler) HandleSetToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SetTokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.SetToken(ctx, req.ParsedContract(), req.ParsedSymbol()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "reward token updated",
		"request_id", requestID, "contract", req.Contract, "symbol", req.Symbol)
	httputil.WriteJSON(w, http.StatusOK, okResponse)
}

// HandleAddTemplates handles POST /v1/admin/templates.
func (h *Handler) HandleAddTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TemplateBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.AddTemplates(ctx, req.ParsedInputs()); err != nil {
		h.logger.WarnContext(ctx, "add templates failed",
			"request_id", requestID, "templates", len(req.Templates), "error", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "templates added",
		"request_id", requestID, "templates", len(req.Templates))
	httputil.WriteJSON(w, http.StatusOK, okResponse)
}

// HandleRemoveTemplates handles DELETE /v1/admin/templates.
func (h *Handler) HandleRemoveTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TemplateBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.RemoveTemplates(ctx, req.ParsedInputs()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "templates removed",
		"request_id", requestID, "templates", len(req.Templates))
	httputil.WriteJSON(w, http.StatusOK, okResponse)
}

// HandleResetUser handles DELETE /v1/admin/users/{user}.
func (h *Handler) HandleResetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	account, ok := h.pathAccount(w, r)
	if !ok {
		return
	}
	if err := h.service.ResetUser(ctx, account); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "user reset", "request_id", requestID, "user", account)
	httputil.WriteJSON(w, http.StatusOK, okResponse)
}

// HandleRecentEvents handles GET /v1/admin/events.
func (h *Handler) HandleRecentEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.auditor == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "audit trail not configured"))
		return
	}
	events, err := h.auditor.ListRecent(ctx, 100)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) pathAccount(w http.ResponseWriter, r *http.Request) (domain.AccountName, bool) {
	account, err := domain.ParseAccountName(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return "", false
	}
	return account, true
}
