package model

import "errors"

// Error taxonomy for order processing. Input faults reject a single line and
// let sibling lines proceed; constraint faults trigger the commit-time
// re-check; ErrLedgerUnavailable fails the whole order without any mutation.
var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrUnknownItem       = errors.New("unknown item")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInsufficientCash  = errors.New("insufficient cash")
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)
