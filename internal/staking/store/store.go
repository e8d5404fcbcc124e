// Package store defines the persistence interfaces of the staking ledger.
// Implementations must keep the secondary indexes (users by rate, assets by
// owner) in lockstep with the primary records inside the same write.
package store

import (
	"context"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
)

// ConfigStore persists the ledger configuration singleton.
// Get returns sentinel.ErrNotFound until the first Save.
type ConfigStore interface {
	Get(ctx context.Context) (*models.Config, error)
	Save(ctx context.Context, cfg *models.Config) error
}

// TemplateStore persists template rates keyed by template id.
type TemplateStore interface {
	Get(ctx context.Context, id domain.TemplateID) (*models.TemplateRate, error)
	Put(ctx context.Context, rate *models.TemplateRate) error
	Delete(ctx context.Context, id domain.TemplateID) error
	List(ctx context.Context) ([]*models.TemplateRate, error)
}

// UserStore persists registered users keyed by account, with a rate-ordered
// secondary index maintained transactionally alongside the primary record.
type UserStore interface {
	Get(ctx context.Context, account domain.AccountName) (*models.User, error)
	// Create fails with sentinel.ErrConflict when the account already exists.
	Create(ctx context.Context, user *models.User) error
	UpdateRate(ctx context.Context, account domain.AccountName, rate domain.Asset) error
	Delete(ctx context.Context, account domain.AccountName) error
	// ListByRate enumerates users ordered by aggregate rate, highest first.
	ListByRate(ctx context.Context, limit int) ([]*models.User, error)
}

// AssetStore persists staked assets keyed by asset id, with an owner
// secondary index for enumerating a user's custody set.
type AssetStore interface {
	Get(ctx context.Context, id domain.AssetID) (*models.StakedAsset, error)
	Put(ctx context.Context, asset *models.StakedAsset) error
	Delete(ctx context.Context, id domain.AssetID) error
	ListByOwner(ctx context.Context, owner domain.AccountName) ([]*models.StakedAsset, error)
}

// TxRunner executes fn atomically: either every store write inside fn is
// visible afterwards or none is. The service pre-validates each batch before
// mutating, so fn only fails on infrastructure errors.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores bundles the four tables plus the transaction runner backing them.
type Stores struct {
	Configs   ConfigStore
	Templates TemplateStore
	Users     UserStore
	Assets    AssetStore
	Runner    TxRunner
}
