package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
	audit "stakeyard/pkg/platform/audit"
	"stakeyard/pkg/platform/sentinel"
	"stakeyard/pkg/requestcontext"
)

var secondsPerHour = big.NewInt(3600)

// Claim pays out the accrued reward for a batch of the caller's staked
// assets. An empty batch claims everything the caller has staked. Every named
// asset must be past the claim cooldown; the batch is all-or-nothing. The
// payout is the exact per-second accrual summed over the batch, truncated
// once at the end; a truncated total of zero fails the call and leaves every
// claim timestamp untouched.
func (s *Service) Claim(ctx context.Context, user domain.AccountName, assetIDs []domain.AssetID) (domain.Asset, error) {
	start := time.Now()
	defer s.observeOp("claim", start)

	if err := requireActing(ctx, user); err != nil {
		return domain.Asset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return domain.Asset{}, err
	}
	if _, err := s.stores.Users.Get(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Asset{}, models.ErrNotRegistered(user)
		}
		return domain.Asset{}, err
	}

	var batch []*models.StakedAsset
	if len(assetIDs) == 0 {
		batch, err = s.stores.Assets.ListByOwner(ctx, user)
		if err != nil {
			return domain.Asset{}, err
		}
	} else {
		batch = make([]*models.StakedAsset, 0, len(assetIDs))
		for _, id := range assetIDs {
			asset, err := s.stores.Assets.Get(ctx, id)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return domain.Asset{}, models.ErrNotStaked(id)
				}
				return domain.Asset{}, err
			}
			if asset.Owner != user {
				return domain.Asset{}, models.ErrOwnerMismatch(id, user)
			}
			batch = append(batch, asset)
		}
	}

	now := requestcontext.Now(ctx)
	total := new(big.Int)
	for _, asset := range batch {
		elapsed := now.Unix() - asset.LastClaim.Unix()
		if time.Duration(elapsed)*time.Second < cfg.MinClaimPeriod {
			return domain.Asset{}, models.ErrClaimCooldown(asset.AssetID)
		}
		rate, err := s.templateRateOf(ctx, asset.AssetID)
		if err != nil {
			return domain.Asset{}, err
		}
		accrued := new(big.Int).Mul(big.NewInt(rate.Amount), big.NewInt(elapsed))
		total.Add(total, accrued)
	}

	// One truncation for the whole batch: sub-hour remainders of individual
	// assets still contribute to the total before the division.
	payoutUnits := new(big.Int).Quo(total, secondsPerHour)
	if payoutUnits.Sign() == 0 {
		return domain.Asset{}, models.ErrNothingToClaim()
	}
	if !payoutUnits.IsInt64() {
		return domain.Asset{}, fmt.Errorf("payout for %s overflows the token amount", user)
	}
	payout := domain.Asset{Amount: payoutUnits.Int64(), Symbol: cfg.TokenSymbol}

	// The reward is delivered before the settlement timestamps move: a failed
	// transfer leaves every last_claim untouched, so the accrual is still
	// claimable on retry instead of silently forfeited.
	if err := s.tokens.Transfer(ctx, user, payout, "staking reward"); err != nil {
		return domain.Asset{}, fmt.Errorf("reward transfer for %s: %w", user, err)
	}

	err = s.stores.Runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, asset := range batch {
			updated := *asset
			updated.LastClaim = now
			if err := s.stores.Assets.Put(ctx, &updated); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// The payout already left the token ledger. Keep the evidence: the
		// next claim will accrue over the same window again.
		s.logger.ErrorContext(ctx, "claim settlement commit failed after payout",
			"user", user, "amount", payout, "error", err)
		return domain.Asset{}, err
	}

	if s.metrics != nil {
		s.metrics.Claims.Inc()
		s.metrics.PayoutUnits.Add(float64(payout.Amount))
	}
	claimed := make([]domain.AssetID, len(batch))
	for i, asset := range batch {
		claimed[i] = asset.AssetID
	}
	s.emit(ctx, audit.Event{
		User:     user.String(),
		Action:   audit.ActionRewardClaimed,
		AssetIDs: assetIDStrings(claimed),
		Amount:   payout.String(),
	})
	return payout, nil
}
