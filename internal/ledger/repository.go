package ledger

import (
	"context"

	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
)

// Mutation is one item's share of an atomic commit: a stock delta, a cash
// delta, and the transaction record documenting it.
type Mutation struct {
	ItemID     string
	UnitsDelta int64
	CashDelta  decimal.Decimal
	Tx         model.Transaction
}

// Store is the durable ledger: cash balance, per-item inventory, and the
// append-only transaction log. ApplyAtomic applies every mutation or none;
// a failed constraint check leaves the store untouched.
type Store interface {
	Snapshot(ctx context.Context) (model.LedgerState, error)
	ApplyAtomic(ctx context.Context, muts []Mutation) error
	Transactions(ctx context.Context) ([]model.Transaction, error)
	OpeningBalance(ctx context.Context) (decimal.Decimal, error)
}
