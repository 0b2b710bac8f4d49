package model

import "time"

type FeasibilityStatus string

const (
	StatusFulfillable   FeasibilityStatus = "fulfillable"
	StatusPartial       FeasibilityStatus = "partial"
	StatusUnfulfillable FeasibilityStatus = "unfulfillable"
)

// FeasibilityResult classifies one line against a stock snapshot. Always
// holds Fulfillable + Shortfall == Requested.
type FeasibilityResult struct {
	ItemID      string            `json:"item_id"`
	Status      FeasibilityStatus `json:"status"`
	Requested   int64             `json:"requested"`
	Fulfillable int64             `json:"fulfillable"`
	Shortfall   int64             `json:"shortfall"`

	// Reorder recommendation. Advisory only: the orchestrator decides
	// whether to act on it.
	ReorderRecommended bool       `json:"reorder_recommended"`
	ReorderQty         int64      `json:"reorder_qty,omitempty"`
	ReorderETA         *time.Time `json:"reorder_eta,omitempty"`
}
