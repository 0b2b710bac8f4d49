package model

import "github.com/shopspring/decimal"

// Item is a catalog entry: the sell price, the replacement cost, and the
// supplier reorder floor for one stocked product.
type Item struct {
	ItemID        string          `db:"item_id" json:"item_id"`
	Category      string          `db:"category" json:"category"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	UnitCost      decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	MinReorderQty int64           `db:"min_reorder_qty" json:"min_reorder_qty"`
}

// LineItem is one (item, quantity) demand within an order. Immutable once
// created; quantities are validated by the orchestrator, not here.
type LineItem struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}
