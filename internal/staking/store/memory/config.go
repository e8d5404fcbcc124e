package memory

import (
	"context"
	"sync"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/platform/sentinel"
)

// ConfigStore holds the configuration singleton.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg *models.Config
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

func (s *ConfigStore) Get(_ context.Context) (*models.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.cfg
	return &cp, nil
}

func (s *ConfigStore) Save(_ context.Context, cfg *models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cfg
	s.cfg = &cp
	return nil
}
