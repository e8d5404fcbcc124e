package service

import (
	"context"

	"stakeyard/pkg/domain"
)

// AssetCatalog resolves assets to their catalog identity. The catalog is an
// external collaborator; the ledger only consumes its answers.
type AssetCatalog interface {
	// ResolveAsset returns the collection and template of an asset.
	ResolveAsset(ctx context.Context, id domain.AssetID) (domain.CollectionName, domain.TemplateID, error)
	// TemplateExists reports whether the template is part of the collection.
	TemplateExists(ctx context.Context, collection domain.CollectionName, id domain.TemplateID) (bool, error)
}

// AssetCustody executes outbound custody transfers: returning unstaked assets
// to their owner.
type AssetCustody interface {
	ReturnAssets(ctx context.Context, to domain.AccountName, ids []domain.AssetID, memo string) error
}

// TokenLedger is the fungible-token collaborator: existence checks for
// setToken and the payout transfer for claims.
type TokenLedger interface {
	ContractExists(ctx context.Context, contract domain.AccountName) (bool, error)
	SymbolExists(ctx context.Context, contract domain.AccountName, sym domain.Symbol) (bool, error)
	Transfer(ctx context.Context, to domain.AccountName, amount domain.Asset, memo string) error
}

// RateIndex mirrors aggregate rates into an external ordered index. Best
// effort: failures are logged and never fail the ledger operation.
type RateIndex interface {
	Set(ctx context.Context, account domain.AccountName, rateUnits int64) error
	Remove(ctx context.Context, account domain.AccountName) error
}
