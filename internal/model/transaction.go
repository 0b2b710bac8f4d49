package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionSale    TransactionKind = "sale"
	TransactionReorder TransactionKind = "reorder"
)

// Transaction is one append-only ledger record. Sales add TotalAmount to
// cash, reorders subtract it; replaying the log from the opening balance must
// reproduce the current cash balance exactly.
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"order_id"`
	Kind        TransactionKind `db:"kind" json:"kind"`
	ItemID      string          `db:"item_id" json:"item_id"`
	Units       int64           `db:"units" json:"units"`
	UnitAmount  decimal.Decimal `db:"unit_amount" json:"unit_amount"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	// ReorderETA is informational metadata on reorder transactions: the
	// supplier delivery date computed at commit time. Stock is applied
	// synchronously regardless.
	ReorderETA *time.Time `db:"reorder_eta" json:"reorder_eta,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// CashDelta is the signed effect of this transaction on the cash balance.
func (t Transaction) CashDelta() decimal.Decimal {
	if t.Kind == TransactionReorder {
		return t.TotalAmount.Neg()
	}
	return t.TotalAmount
}
