package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
	audit "stakeyard/pkg/platform/audit"
	"stakeyard/pkg/platform/sentinel"
	"stakeyard/pkg/requestcontext"
)

// HandleDeposit processes a custody-transfer notification. Dispatch on the
// memo happens exactly once, at the entry point: anything but the stake
// marker passes through untouched so unrelated transfers are unaffected.
func (s *Service) HandleDeposit(ctx context.Context, notice models.DepositNotice) error {
	switch notice.Kind {
	case models.DepositStake:
		return s.stake(ctx, notice.From, notice.AssetIDs)
	default:
		s.logger.DebugContext(ctx, "ignoring non-stake deposit",
			"from", notice.From,
			"assets", len(notice.AssetIDs),
		)
		return nil
	}
}

// stake admits a deposited batch: every asset must resolve to a registered
// template rate, then custody records are created and the owner's aggregate
// rate is incremented, all atomically.
func (s *Service) stake(ctx context.Context, from domain.AccountName, assetIDs []domain.AssetID) error {
	start := time.Now()
	defer s.observeOp("stake", start)

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return err
	}

	user, err := s.stores.Users.Get(ctx, from)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrNotRegistered(from)
		}
		return err
	}

	// Validation phase: resolve every asset before admitting any. Custody
	// notices are delivered at-least-once, so a replay must not create a
	// second admission for an asset that already has a custody record.
	added := domain.Zero(cfg.TokenSymbol)
	seen := make(map[domain.AssetID]bool, len(assetIDs))
	for _, id := range assetIDs {
		if seen[id] {
			return models.ErrAlreadyStaked(id)
		}
		seen[id] = true
		if _, err := s.stores.Assets.Get(ctx, id); err == nil {
			return models.ErrAlreadyStaked(id)
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		collection, templateID, err := s.catalog.ResolveAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("resolve asset %s: %w", id, err)
		}
		rate, err := s.stores.Templates.Get(ctx, templateID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return models.ErrNotStakeable(id)
			}
			return err
		}
		if rate.Collection != collection {
			return models.ErrNotStakeable(id)
		}
		added, err = added.Add(rate.HourlyRate)
		if err != nil {
			return fmt.Errorf("aggregate rate for asset %s: %w", id, err)
		}
	}

	newRate, err := user.HourlyRate.Add(added)
	if err != nil {
		return fmt.Errorf("aggregate rate for %s: %w", from, err)
	}
	now := requestcontext.Now(ctx)

	err = s.stores.Runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, id := range assetIDs {
			record := models.StakedAsset{
				AssetID:   id,
				Owner:     from,
				LastClaim: now,
			}
			if err := s.stores.Assets.Put(ctx, &record); err != nil {
				return err
			}
		}
		return s.stores.Users.UpdateRate(ctx, from, newRate)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.AssetsStaked.Add(float64(len(assetIDs)))
	}
	s.mirrorRate(ctx, from, newRate.Amount)
	s.emit(ctx, audit.Event{
		Actor:    from.String(),
		User:     from.String(),
		Action:   audit.ActionAssetsStaked,
		AssetIDs: assetIDStrings(assetIDs),
		Amount:   added.String(),
	})
	return nil
}
