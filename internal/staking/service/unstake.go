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

// Unstake releases a batch of the caller's staked assets back to them. Every
// asset must be past the unstake cooldown; one failing asset rejects the whole
// batch. Pending accrual on released assets is forfeited.
func (s *Service) Unstake(ctx context.Context, user domain.AccountName, assetIDs []domain.AssetID) error {
	start := time.Now()
	defer s.observeOp("unstake", start)

	if err := requireActing(ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return err
	}
	record, err := s.stores.Users.Get(ctx, user)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrNotRegistered(user)
		}
		return err
	}
	if len(assetIDs) == 0 {
		return models.ErrEmptyUnstake()
	}

	now := requestcontext.Now(ctx)
	removed := domain.Zero(cfg.TokenSymbol)
	for _, id := range assetIDs {
		asset, err := s.stores.Assets.Get(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return models.ErrNotStaked(id)
			}
			return err
		}
		if asset.Owner != user {
			return models.ErrOwnerMismatch(id, user)
		}
		if now.Sub(asset.LastClaim) < cfg.UnstakePeriod {
			return models.ErrUnstakeCooldown(id)
		}
		rate, err := s.templateRateOf(ctx, id)
		if err != nil {
			return err
		}
		removed, err = removed.Add(rate)
		if err != nil {
			return fmt.Errorf("aggregate rate for asset %s: %w", id, err)
		}
	}

	newRate, err := record.HourlyRate.Sub(removed)
	if err != nil {
		return fmt.Errorf("aggregate rate for %s: %w", user, err)
	}

	// The custody service gives the assets back before the ledger lets go of
	// them: a failed return leaves the custody records and the aggregate rate
	// untouched, so the user can retry instead of losing track of the assets.
	if err := s.custody.ReturnAssets(ctx, user, assetIDs, "returning staked assets"); err != nil {
		return fmt.Errorf("asset return transfer for %s: %w", user, err)
	}

	err = s.stores.Runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, id := range assetIDs {
			if err := s.stores.Assets.Delete(ctx, id); err != nil {
				return err
			}
		}
		return s.stores.Users.UpdateRate(ctx, user, newRate)
	})
	if err != nil {
		// The assets already left custody. Surface the inconsistency loudly:
		// the stale records block re-admission until an admin reset.
		s.logger.ErrorContext(ctx, "unstake commit failed after asset return",
			"user", user, "assets", len(assetIDs), "error", err)
		return err
	}

	if s.metrics != nil {
		s.metrics.AssetsUnstaked.Add(float64(len(assetIDs)))
	}
	s.mirrorRate(ctx, user, newRate.Amount)
	s.emit(ctx, audit.Event{
		User:     user.String(),
		Action:   audit.ActionAssetsUnstaked,
		AssetIDs: assetIDStrings(assetIDs),
		Amount:   removed.String(),
	})
	return nil
}

// templateRateOf resolves the admission-time hourly rate of a staked asset by
// re-resolving its template through the catalog.
func (s *Service) templateRateOf(ctx context.Context, id domain.AssetID) (domain.Asset, error) {
	collection, templateID, err := s.catalog.ResolveAsset(ctx, id)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("resolve asset %s: %w", id, err)
	}
	rate, err := s.stores.Templates.Get(ctx, templateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Asset{}, models.ErrTemplateNotFound(templateID, collection)
		}
		return domain.Asset{}, err
	}
	return rate.HourlyRate, nil
}
