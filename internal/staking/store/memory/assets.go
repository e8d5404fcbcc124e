package memory

import (
	"context"
	"sort"
	"sync"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
	"stakeyard/pkg/platform/sentinel"
)

// AssetStore keeps staked assets with an owner secondary index. Exclusive
// custody holds by construction: the map key is the asset id.
type AssetStore struct {
	mu      sync.RWMutex
	assets  map[domain.AssetID]models.StakedAsset
	byOwner map[domain.AccountName]map[domain.AssetID]struct{}
}

func NewAssetStore() *AssetStore {
	return &AssetStore{
		assets:  make(map[domain.AssetID]models.StakedAsset),
		byOwner: make(map[domain.AccountName]map[domain.AssetID]struct{}),
	}
}

func (s *AssetStore) Get(_ context.Context, id domain.AssetID) (*models.StakedAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &asset, nil
}

func (s *AssetStore) Put(_ context.Context, asset *models.StakedAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.assets[asset.AssetID]; ok && prev.Owner != asset.Owner {
		delete(s.byOwner[prev.Owner], asset.AssetID)
	}
	s.assets[asset.AssetID] = *asset
	owned, ok := s.byOwner[asset.Owner]
	if !ok {
		owned = make(map[domain.AssetID]struct{})
		s.byOwner[asset.Owner] = owned
	}
	owned[asset.AssetID] = struct{}{}
	return nil
}

func (s *AssetStore) Delete(_ context.Context, id domain.AssetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.assets, id)
	delete(s.byOwner[asset.Owner], id)
	if len(s.byOwner[asset.Owner]) == 0 {
		delete(s.byOwner, asset.Owner)
	}
	return nil
}

func (s *AssetStore) ListByOwner(_ context.Context, owner domain.AccountName) ([]*models.StakedAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]domain.AssetID, 0, len(s.byOwner[owner]))
	for id := range s.byOwner[owner] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*models.StakedAsset, 0, len(ids))
	for _, id := range ids {
		asset := s.assets[id]
		cp := asset
		out = append(out, &cp)
	}
	return out, nil
}
