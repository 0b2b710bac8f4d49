package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteLine prices one line item: the band discount applied to its subtotal.
type QuoteLine struct {
	ItemID       string          `json:"item_id"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	Discount     decimal.Decimal `json:"discount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Total        decimal.Decimal `json:"total"`
}

// Quote is an ephemeral priced view of a set of lines. It is never persisted
// by the ledger and is recomputable from catalog prices at any time.
type Quote struct {
	Lines    []QuoteLine     `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// QuoteRecord is the optional quote history row: one entry per processed
// order with a human-readable explanation. Informational only; nothing in
// the commit path reads it back.
type QuoteRecord struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"order_id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Explanation string          `db:"explanation" json:"explanation"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
