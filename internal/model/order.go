package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderState tracks a single order submission through the pipeline.
// received → assessed → priced → committed | partially_committed | rejected.
// failed is reserved for storage faults where nothing was written.
type OrderState string

const (
	OrderReceived           OrderState = "received"
	OrderAssessed           OrderState = "assessed"
	OrderPriced             OrderState = "priced"
	OrderCommitted          OrderState = "committed"
	OrderPartiallyCommitted OrderState = "partially_committed"
	OrderRejected           OrderState = "rejected"
	OrderFailed             OrderState = "failed"
)

// LineOutcome is the per-line result surfaced to the caller.
type LineOutcome struct {
	ItemID       string            `json:"item_id"`
	Requested    int64             `json:"requested"`
	Committed    int64             `json:"committed"`
	Shortfall    int64             `json:"shortfall"`
	Status       FeasibilityStatus `json:"status"`
	UnitPrice    decimal.Decimal   `json:"unit_price"`
	DiscountRate decimal.Decimal   `json:"discount_rate"`
	LineTotal    decimal.Decimal   `json:"line_total"`
	Reordered    bool              `json:"reordered"`
	ReorderQty   int64             `json:"reorder_qty,omitempty"`
	ReorderETA   *time.Time        `json:"reorder_eta,omitempty"`
	// Reason explains any unfulfilled or rejected portion in plain words.
	Reason string `json:"reason,omitempty"`
}

// OrderResponse is the assembled answer for one order submission.
type OrderResponse struct {
	OrderID string        `json:"order_id"`
	State   OrderState    `json:"state"`
	Lines   []LineOutcome `json:"lines"`
	// Quote prices the quantities actually committed. FullQuote is the
	// informational "what full fulfillment would have cost" view; nil when
	// it would equal Quote.
	Quote     *Quote      `json:"quote,omitempty"`
	FullQuote *Quote      `json:"full_quote,omitempty"`
	Closing   LedgerState `json:"closing"`
	CreatedAt time.Time   `json:"created_at"`
}
