// Package service implements the accrual engine and the stake/unstake
// coordinator on top of the ledger stores. Every public operation validates
// its whole batch before the first write and runs all writes in one
// transaction, so a call either fully applies or leaves no trace.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stakeyard/internal/staking/metrics"
	"stakeyard/internal/staking/models"
	"stakeyard/internal/staking/store"
	"stakeyard/pkg/domain"
	audit "stakeyard/pkg/platform/audit"
	"stakeyard/pkg/platform/sentinel"
	"stakeyard/pkg/requestcontext"
)

// Service is the staking ledger engine.
type Service struct {
	// mu serializes mutating operations. The batch contract (validate
	// everything, then write) needs a stable snapshot between the two phases.
	mu sync.Mutex

	stores  store.Stores
	catalog AssetCatalog
	custody AssetCustody
	tokens  TokenLedger

	rateIndex RateIndex
	auditor   audit.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithRateIndex attaches the external rate-ordered index mirror.
func WithRateIndex(idx RateIndex) Option {
	return func(s *Service) { s.rateIndex = idx }
}

// WithAuditor attaches the audit event emitter.
func WithAuditor(e audit.Emitter) Option {
	return func(s *Service) { s.auditor = e }
}

// WithMetrics attaches the Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New builds the service. Stores and the three collaborators are required.
func New(stores store.Stores, catalog AssetCatalog, custody AssetCustody, tokens TokenLedger, opts ...Option) (*Service, error) {
	if stores.Configs == nil || stores.Templates == nil || stores.Users == nil || stores.Assets == nil || stores.Runner == nil {
		return nil, errors.New("all ledger stores are required")
	}
	if catalog == nil {
		return nil, errors.New("asset catalog is required")
	}
	if custody == nil {
		return nil, errors.New("asset custody is required")
	}
	if tokens == nil {
		return nil, errors.New("token ledger is required")
	}

	s := &Service{
		stores:  stores,
		catalog: catalog,
		custody: custody,
		tokens:  tokens,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// requireActing enforces that the verified acting account is user.
func requireActing(ctx context.Context, user domain.AccountName) error {
	if requestcontext.ActingAccount(ctx) != user {
		return models.ErrUnauthorized(user)
	}
	return nil
}

// requireAdmin enforces that the call carries controlling-authority
// privileges.
func requireAdmin(ctx context.Context) error {
	if !requestcontext.IsAdmin(ctx) {
		return models.ErrAdminOnly()
	}
	return nil
}

// activeConfig loads the configuration and rejects frozen or uninitialized
// ledgers. The frozen check precedes all other validation in every mutating
// ledger operation.
func (s *Service) activeConfig(ctx context.Context) (*models.Config, error) {
	cfg, err := s.stores.Configs.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrNotInitialized()
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.IsFrozen {
		return nil, models.ErrFrozen()
	}
	return cfg, nil
}

// configOrDefault loads the configuration, creating the default in memory on
// first use. Admin configuration actions work even while frozen.
func (s *Service) configOrDefault(ctx context.Context) (*models.Config, error) {
	cfg, err := s.stores.Configs.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// mirrorRate pushes a user's aggregate rate to the external index, best
// effort.
func (s *Service) mirrorRate(ctx context.Context, account domain.AccountName, rateUnits int64) {
	if s.rateIndex == nil {
		return
	}
	if err := s.rateIndex.Set(ctx, account, rateUnits); err != nil {
		s.logger.WarnContext(ctx, "rate index update failed", "user", account, "error", err)
	}
}

// unmirrorRate drops a user from the external index, best effort.
func (s *Service) unmirrorRate(ctx context.Context, account domain.AccountName) {
	if s.rateIndex == nil {
		return
	}
	if err := s.rateIndex.Remove(ctx, account); err != nil {
		s.logger.WarnContext(ctx, "rate index remove failed", "user", account, "error", err)
	}
}

// emit records an audit event, best effort.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if event.Actor == "" {
		event.Actor = requestcontext.ActingAccount(ctx).String()
	}
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

// observeOp records an operation latency when metrics are wired.
func (s *Service) observeOp(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOp(operation, time.Since(start).Seconds())
	}
}

func assetIDStrings(ids []domain.AssetID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
