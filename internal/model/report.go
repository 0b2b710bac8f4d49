package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLine is one row of the financial report's inventory breakdown.
type InventoryLine struct {
	ItemID   string          `json:"item_id"`
	Stock    int64           `json:"stock"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Value    decimal.Decimal `json:"value"`
}

// TopSeller aggregates sales revenue for one item.
type TopSeller struct {
	ItemID       string          `json:"item_id"`
	TotalUnits   int64           `json:"total_units"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// FinancialReport is the point-in-time view of company assets: cash as of
// the requested date (replayed from the transaction log), current inventory
// valuation, and the best-selling products.
type FinancialReport struct {
	AsOf             time.Time       `json:"as_of"`
	CashBalance      decimal.Decimal `json:"cash_balance"`
	InventoryValue   decimal.Decimal `json:"inventory_value"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	InventorySummary []InventoryLine `json:"inventory_summary"`
	TopSellers       []TopSeller     `json:"top_sellers"`
}
