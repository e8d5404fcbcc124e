package models

import (
	"fmt"

	pkgerrors "stakeyard/pkg/domain-errors"

	"stakeyard/pkg/domain"
)

// Error constructors for the ledger's failure taxonomy. The messages are part
// of the external contract: callers and tests assert on the exact wording.

func ErrAdminOnly() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeAdminOnly, "this action is admin only")
}

func ErrUnauthorized(user domain.AccountName) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized,
		fmt.Sprintf("user %s has not authorized this action", user))
}

func ErrNotInitialized() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotInitialized, "smart contract is not initialized yet")
}

func ErrFrozen() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeContractFrozen, "smart contract is currently frozen")
}

func ErrAlreadyFrozen() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeAlreadyInState, "contract is already frozen")
}

func ErrAlreadyNonFrozen() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeAlreadyInState, "contract is already non-frozen")
}

func ErrNotRegistered(user domain.AccountName) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotRegistered,
		fmt.Sprintf("user %s is not registered", user))
}

func ErrAlreadyRegistered(user domain.AccountName) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeAlreadyRegistered,
		fmt.Sprintf("user %s is already registered", user))
}

func ErrNotStaked(id domain.AssetID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotStaked,
		fmt.Sprintf("asset (%s) is not staked", id))
}

func ErrAlreadyStaked(id domain.AssetID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeAlreadyInState,
		fmt.Sprintf("asset (%s) is already staked", id))
}

func ErrOwnerMismatch(id domain.AssetID, user domain.AccountName) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeOwnerMismatch,
		fmt.Sprintf("asset (%s) does not belong to %s", id, user))
}

func ErrNotStakeable(id domain.AssetID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotStakeable,
		fmt.Sprintf("asset (%s) is not stakeable", id))
}

func ErrClaimCooldown(id domain.AssetID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeCooldownActive,
		fmt.Sprintf("asset (%s) is still in cooldown", id))
}

func ErrUnstakeCooldown(id domain.AssetID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeCooldownActive,
		fmt.Sprintf("asset (%s) cannot be unstaked yet", id))
}

func ErrNothingToClaim() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNothingToClaim, "nothing to claim")
}

func ErrEmptyUnstake() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeEmptyBatch, "must unstake at least 1 asset")
}

func ErrNonPositiveRate() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNonPositiveRate, "hourly_rate must be positive")
}

func ErrSymbolMismatch() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeCurrencyMismatch, "symbol mismatch")
}

func ErrTemplateNotFound(id domain.TemplateID, collection domain.CollectionName) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeTemplateNotFound,
		fmt.Sprintf("template (%s) not found in collection %s", id, collection))
}

func ErrTemplateNotRegistered(id domain.TemplateID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeTemplateNotFound,
		fmt.Sprintf("template (%s) is not registered", id))
}

func ErrContractNotFound() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvalidReference, "contract account does not exist")
}

func ErrSymbolNotFound() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeSymbolNotFound, "token symbol does not exist")
}
