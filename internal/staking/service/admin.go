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
)

// SetFrozen toggles the operational freeze flag. Toggling to the current
// state fails, so every successful call is a real transition.
func (s *Service) SetFrozen(ctx context.Context, frozen bool) error {
	start := time.Now()
	defer s.observeOp("set_frozen", start)

	if err := requireAdmin(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.configOrDefault(ctx)
	if err != nil {
		return err
	}
	if cfg.IsFrozen && frozen {
		return models.ErrAlreadyFrozen()
	}
	if !cfg.IsFrozen && !frozen {
		return models.ErrAlreadyNonFrozen()
	}
	cfg.IsFrozen = frozen
	if err := s.stores.Configs.Save(ctx, cfg); err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Actor:  "admin",
		Action: audit.ActionFrozenToggled,
		Detail: fmt.Sprintf("is_frozen=%t", frozen),
	})
	return nil
}

// SetConfig overwrites the claim and unstake periods, creating the
// configuration singleton with defaults on first call. The freeze flag and
// token denomination are left untouched.
func (s *Service) SetConfig(ctx context.Context, minClaimPeriod, unstakePeriod time.Duration) error {
	start := time.Now()
	defer s.observeOp("set_config", start)

	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if minClaimPeriod < 0 || unstakePeriod < 0 {
		return errors.New("periods must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.configOrDefault(ctx)
	if err != nil {
		return err
	}
	cfg.MinClaimPeriod = minClaimPeriod
	cfg.UnstakePeriod = unstakePeriod
	if err := s.stores.Configs.Save(ctx, cfg); err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Actor:  "admin",
		Action: audit.ActionConfigUpdated,
		Detail: fmt.Sprintf("min_claim_period=%s unstake_period=%s", minClaimPeriod, unstakePeriod),
	})
	return nil
}

// SetToken updates the reward token contract and denomination after checking
// both exist on the token ledger. Registered template rates are not
// re-validated against the new symbol.
func (s *Service) SetToken(ctx context.Context, contract domain.AccountName, sym domain.Symbol) error {
	start := time.Now()
	defer s.observeOp("set_token", start)

	if err := requireAdmin(ctx); err != nil {
		return err
	}

	exists, err := s.tokens.ContractExists(ctx, contract)
	if err != nil {
		return fmt.Errorf("token contract lookup: %w", err)
	}
	if !exists {
		return models.ErrContractNotFound()
	}
	hasSymbol, err := s.tokens.SymbolExists(ctx, contract, sym)
	if err != nil {
		return fmt.Errorf("token symbol lookup: %w", err)
	}
	if !hasSymbol {
		return models.ErrSymbolNotFound()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.configOrDefault(ctx)
	if err != nil {
		return err
	}
	cfg.TokenContract = contract
	cfg.TokenSymbol = sym
	if err := s.stores.Configs.Save(ctx, cfg); err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Actor:  "admin",
		Action: audit.ActionTokenUpdated,
		Detail: fmt.Sprintf("contract=%s symbol=%s", contract, sym),
	})
	return nil
}

// AddTemplates registers template rates. The whole batch is validated before
// any write; one bad entry aborts the call.
func (s *Service) AddTemplates(ctx context.Context, entries []models.TemplateInput) error {
	start := time.Now()
	defer s.observeOp("add_templates", start)

	if err := requireAdmin(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.configOrDefault(ctx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.HourlyRate.IsPositive() {
			return models.ErrNonPositiveRate()
		}
		if !entry.HourlyRate.Symbol.Equal(cfg.TokenSymbol) {
			return models.ErrSymbolMismatch()
		}
		exists, err := s.catalog.TemplateExists(ctx, entry.Collection, entry.TemplateID)
		if err != nil {
			return fmt.Errorf("catalog lookup for template %s: %w", entry.TemplateID, err)
		}
		if !exists {
			return models.ErrTemplateNotFound(entry.TemplateID, entry.Collection)
		}
	}

	err = s.stores.Runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, entry := range entries {
			rate := models.TemplateRate{
				TemplateID: entry.TemplateID,
				Collection: entry.Collection,
				HourlyRate: entry.HourlyRate,
			}
			if err := s.stores.Templates.Put(ctx, &rate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Actor:  "admin",
		Action: audit.ActionTemplatesAdded,
		Detail: fmt.Sprintf("count=%d", len(entries)),
	})
	return nil
}

// RemoveTemplates unregisters template rates. Removal stops new admissions
// immediately; assets already staked under a removed template cannot be
// claimed or unstaked until the template is re-added (or the owner is reset
// by an admin), since their rate can no longer be resolved.
func (s *Service) RemoveTemplates(ctx context.Context, entries []models.TemplateInput) error {
	start := time.Now()
	defer s.observeOp("remove_templates", start)

	if err := requireAdmin(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeConfig(ctx); err != nil {
		return err
	}

	for _, entry := range entries {
		if _, err := s.stores.Templates.Get(ctx, entry.TemplateID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return models.ErrTemplateNotRegistered(entry.TemplateID)
			}
			return err
		}
	}

	err := s.stores.Runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, entry := range entries {
			if err := s.stores.Templates.Delete(ctx, entry.TemplateID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Actor:  "admin",
		Action: audit.ActionTemplatesRemoved,
		Detail: fmt.Sprintf("count=%d", len(entries)),
	})
	return nil
}

// ResetUser is the administrative wipe: it deletes every staked asset owned
// by the user and then the user record, with no payout and no cooldown
// checks. Two-phase: enumerate dependents via the owner index, delete each,
// then delete the parent, all in one transaction.
func (s *Service) ResetUser(ctx context.Context, user domain.AccountName) error {
	start := time.Now()
	defer s.observeOp("reset_user", start)

	if err := requireAdmin(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.stores.Users.Get(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrNotRegistered(user)
		}
		return err
	}
	owned, err := s.stores.Assets.ListByOwner(ctx, user)
	if err != nil {
		return err
	}

	err = s.stores.Runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, asset := range owned {
			if err := s.stores.Assets.Delete(ctx, asset.AssetID); err != nil {
				return err
			}
		}
		return s.stores.Users.Delete(ctx, user)
	})
	if err != nil {
		return err
	}

	s.unmirrorRate(ctx, user)
	ids := make([]domain.AssetID, len(owned))
	for i, asset := range owned {
		ids[i] = asset.AssetID
	}
	s.emit(ctx, audit.Event{
		Actor:    "admin",
		User:     user.String(),
		Action:   audit.ActionUserReset,
		AssetIDs: assetIDStrings(ids),
	})
	return nil
}
