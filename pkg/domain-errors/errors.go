// Package domainerrors defines the coded errors the staking ledger surfaces to
// callers. Every failure aborts the whole call; the code is stable so clients
// and tests can assert on exact failure reasons.
package domainerrors

import "net/http"

// Code enumerates the failure kinds of the ledger.
type Code string

const (
	CodeUnauthorized      Code = "unauthorized"
	CodeAdminOnly         Code = "admin_only"
	CodeNotInitialized    Code = "not_initialized"
	CodeContractFrozen    Code = "contract_frozen"
	CodeAlreadyInState    Code = "already_in_state"
	CodeNotRegistered     Code = "not_registered"
	CodeAlreadyRegistered Code = "already_registered"
	CodeNotStaked         Code = "not_staked"
	CodeOwnerMismatch     Code = "owner_mismatch"
	CodeNotStakeable      Code = "not_stakeable"
	CodeCooldownActive    Code = "cooldown_active"
	CodeNothingToClaim    Code = "nothing_to_claim"
	CodeEmptyBatch        Code = "empty_batch"
	CodeNonPositiveRate   Code = "non_positive_rate"
	CodeCurrencyMismatch  Code = "currency_mismatch"
	CodeTemplateNotFound  Code = "template_not_found"
	CodeInvalidReference  Code = "invalid_reference"
	CodeSymbolNotFound    Code = "symbol_not_found"
	CodeBadRequest        Code = "bad_request"
	CodeInternal          Code = "internal"
)

// Error carries a stable code plus the human-readable message asserted on by
// callers. Messages are part of the contract; do not reword them casually.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the code from err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if de, ok := err.(*Error); ok {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer responds with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized, CodeAdminOnly:
		return http.StatusForbidden
	case CodeNotRegistered, CodeNotStaked, CodeTemplateNotFound, CodeSymbolNotFound, CodeInvalidReference:
		return http.StatusNotFound
	case CodeAlreadyRegistered, CodeAlreadyInState, CodeOwnerMismatch:
		return http.StatusConflict
	case CodeContractFrozen, CodeNotInitialized:
		return http.StatusServiceUnavailable
	case CodeCooldownActive:
		return http.StatusTooEarly
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNothingToClaim, CodeEmptyBatch, CodeNotStakeable, CodeNonPositiveRate, CodeCurrencyMismatch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
