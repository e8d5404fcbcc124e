// Package models defines the persisted records of the staking ledger: the
// configuration singleton, template rates, user aggregates, and staked assets.
package models

import (
	"time"

	"stakeyard/pkg/domain"
)

// Default configuration values applied when the singleton is first created.
const (
	DefaultMinClaimPeriod = 600 * time.Second
	DefaultUnstakePeriod  = 3 * 24 * time.Hour
)

// DefaultTokenContract and DefaultTokenSymbol mirror the reward token the
// ledger starts with before setToken is called.
var (
	DefaultTokenContract = domain.AccountName("eosio.token")
	DefaultTokenSymbol   = domain.Symbol{Code: "WAX", Precision: 8}
)

// Config is the process-wide ledger configuration singleton.
type Config struct {
	IsFrozen       bool
	TokenContract  domain.AccountName
	TokenSymbol    domain.Symbol
	MinClaimPeriod time.Duration
	UnstakePeriod  time.Duration
}

// DefaultConfig returns the configuration the first admin action creates.
func DefaultConfig() *Config {
	return &Config{
		IsFrozen:       false,
		TokenContract:  DefaultTokenContract,
		TokenSymbol:    DefaultTokenSymbol,
		MinClaimPeriod: DefaultMinClaimPeriod,
		UnstakePeriod:  DefaultUnstakePeriod,
	}
}

// TemplateRate maps a catalog template to its hourly reward rate. The rate is
// fixed at admission time; later symbol changes in Config do not retroactively
// re-validate registered templates.
type TemplateRate struct {
	TemplateID domain.TemplateID
	Collection domain.CollectionName
	HourlyRate domain.Asset
}

// User is one registered participant. HourlyRate is the aggregate of the
// admission-time rates of every asset the user currently has staked; it is
// restored synchronously within the same operation that adds or removes a
// staked asset.
type User struct {
	Account    domain.AccountName
	HourlyRate domain.Asset
}

// StakedAsset is one asset in custody. LastClaim is the stake time until the
// first successful claim, then the time of the latest claim.
type StakedAsset struct {
	AssetID   domain.AssetID
	Owner     domain.AccountName
	LastClaim time.Time
}

// TemplateInput is one entry of an addTemplates/removeTemplates batch.
type TemplateInput struct {
	TemplateID domain.TemplateID
	Collection domain.CollectionName
	HourlyRate domain.Asset
}

// DepositKind is the dispatch decision for an incoming custody transfer,
// evaluated exactly once at the entry point.
type DepositKind int

const (
	// DepositPassThrough is any transfer whose memo is not the stake marker;
	// the ledger takes no action.
	DepositPassThrough DepositKind = iota
	// DepositStake admits the transferred assets into custody.
	DepositStake
)

// StakeMemo is the memo that marks a custody transfer as a staking deposit.
const StakeMemo = "stake"

// ParseDepositKind classifies a transfer memo.
func ParseDepositKind(memo string) DepositKind {
	if memo == StakeMemo {
		return DepositStake
	}
	return DepositPassThrough
}

// DepositNotice is the inbound notification that custody of assets moved to
// the ledger.
type DepositNotice struct {
	From     domain.AccountName
	AssetIDs []domain.AssetID
	Kind     DepositKind
}
