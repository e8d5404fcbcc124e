// Package memory provides in-process implementations of the ledger stores.
// Suitable for tests and single-node deployments; the postgres package is the
// durable counterpart.
package memory

import (
	"context"

	"stakeyard/internal/staking/store"
)

// Runner satisfies store.TxRunner for the in-memory stores. The service
// serializes mutating calls and fully pre-validates before writing, so the
// function body is applied directly.
type Runner struct{}

func (Runner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NewStores builds the full in-memory store bundle.
func NewStores() store.Stores {
	return store.Stores{
		Configs:   NewConfigStore(),
		Templates: NewTemplateStore(),
		Users:     NewUserStore(),
		Assets:    NewAssetStore(),
		Runner:    Runner{},
	}
}
