package memory

import (
	"context"
	"sort"
	"sync"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
	"stakeyard/pkg/platform/sentinel"
)

// TemplateStore keeps template rates keyed by template id.
type TemplateStore struct {
	mu    sync.RWMutex
	rates map[domain.TemplateID]models.TemplateRate
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{rates: make(map[domain.TemplateID]models.TemplateRate)}
}

func (s *TemplateStore) Get(_ context.Context, id domain.TemplateID) (*models.TemplateRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.rates[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rate, nil
}

func (s *TemplateStore) Put(_ context.Context, rate *models.TemplateRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[rate.TemplateID] = *rate
	return nil
}

func (s *TemplateStore) Delete(_ context.Context, id domain.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rates[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rates, id)
	return nil
}

func (s *TemplateStore) List(_ context.Context) ([]*models.TemplateRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.TemplateRate, 0, len(s.rates))
	for _, rate := range s.rates {
		cp := rate
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateID < out[j].TemplateID })
	return out, nil
}
