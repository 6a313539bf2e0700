package errors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrTransport            = errors.New("transport failure")
	ErrUpstream             = errors.New("upstream rejected request")
	ErrAuthTerminal         = errors.New("session expired")
	ErrNotPayable           = errors.New("order is not payable")
	ErrSubOrderNotDeletable = errors.New("sub-order cannot be deleted in its current status")
	ErrPartialCompletion    = errors.New("checkout partially completed")
	ErrCheckoutFailed       = errors.New("checkout failed for every item")
	ErrSettlementRace       = errors.New("settlement not yet observed")
)
