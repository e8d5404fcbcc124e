package memory

import (
	"context"
	"sort"
	"sync"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
	"stakeyard/pkg/platform/sentinel"
)

// UserStore keeps registered users with an explicitly maintained rate-ordered
// index. The index is updated inside the same critical section as the primary
// record, never derived lazily.
type UserStore struct {
	mu    sync.RWMutex
	users map[domain.AccountName]models.User
	// byRate is sorted ascending by (rate amount, account).
	byRate []rateKey
}

type rateKey struct {
	rate    int64
	account domain.AccountName
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[domain.AccountName]models.User)}
}

func (s *UserStore) Get(_ context.Context, account domain.AccountName) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[account]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &user, nil
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Account]; ok {
		return sentinel.ErrConflict
	}
	s.users[user.Account] = *user
	s.indexInsert(rateKey{rate: user.HourlyRate.Amount, account: user.Account})
	return nil
}

func (s *UserStore) UpdateRate(_ context.Context, account domain.AccountName, rate domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[account]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.indexRemove(rateKey{rate: user.HourlyRate.Amount, account: account})
	user.HourlyRate = rate
	s.users[account] = user
	s.indexInsert(rateKey{rate: rate.Amount, account: account})
	return nil
}

func (s *UserStore) Delete(_ context.Context, account domain.AccountName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[account]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.indexRemove(rateKey{rate: user.HourlyRate.Amount, account: account})
	delete(s.users, account)
	return nil
}

func (s *UserStore) ListByRate(_ context.Context, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.byRate))
	// byRate is ascending; walk backwards for highest-first.
	for i := len(s.byRate) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		user := s.users[s.byRate[i].account]
		cp := user
		out = append(out, &cp)
	}
	return out, nil
}

func (k rateKey) less(o rateKey) bool {
	if k.rate != o.rate {
		return k.rate < o.rate
	}
	return k.account < o.account
}

func (s *UserStore) indexInsert(k rateKey) {
	i := sort.Search(len(s.byRate), func(i int) bool { return !s.byRate[i].less(k) })
	s.byRate = append(s.byRate, rateKey{})
	copy(s.byRate[i+1:], s.byRate[i:])
	s.byRate[i] = k
}

func (s *UserStore) indexRemove(k rateKey) {
	i := sort.Search(len(s.byRate), func(i int) bool { return !s.byRate[i].less(k) })
	if i < len(s.byRate) && s.byRate[i] == k {
		s.byRate = append(s.byRate[:i], s.byRate[i+1:]...)
	}
}
