package service

import (
	"context"
	"errors"
	"time"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
	audit "stakeyard/pkg/platform/audit"
	"stakeyard/pkg/platform/sentinel"
)

// RegisterUser creates the user record with a zero aggregate rate in the
// configured denomination. Duplicate registration fails.
func (s *Service) RegisterUser(ctx context.Context, user domain.AccountName) error {
	start := time.Now()
	defer s.observeOp("register_user", start)

	if err := requireActing(ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return err
	}

	record := models.User{
		Account:    user,
		HourlyRate: domain.Zero(cfg.TokenSymbol),
	}
	if err := s.stores.Users.Create(ctx, &record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.ErrAlreadyRegistered(user)
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	s.mirrorRate(ctx, user, 0)
	s.emit(ctx, audit.Event{
		User:   user.String(),
		Action: audit.ActionUserRegistered,
	})
	return nil
}

// GetUser returns the user record and its staked assets.
func (s *Service) GetUser(ctx context.Context, user domain.AccountName) (*models.User, []*models.StakedAsset, error) {
	record, err := s.stores.Users.Get(ctx, user)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, models.ErrNotRegistered(user)
		}
		return nil, nil, err
	}
	assets, err := s.stores.Assets.ListByOwner(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return record, assets, nil
}

// ListUsersByRate enumerates users ordered by aggregate rate, highest first.
func (s *Service) ListUsersByRate(ctx context.Context, limit int) ([]*models.User, error) {
	return s.stores.Users.ListByRate(ctx, limit)
}
