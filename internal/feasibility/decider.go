// Package feasibility classifies order lines against a ledger snapshot and
// recommends supplier reorders for eligible shortfalls.
package feasibility

import (
	"time"

	"github.com/munderdifflin/fulfillment-service/internal/model"
)

type Decider struct {
	oracle SupplierOracle
	// reorderThreshold is the minimum shortfall that makes a reorder
	// recommendation; shortfalls below it are reported but not acted on.
	reorderThreshold int64
	// minReorderQty floors the recommended reorder quantity.
	minReorderQty int64
	now           func() time.Time
}

func NewDecider(oracle SupplierOracle, reorderThreshold, minReorderQty int64) *Decider {
	return &Decider{
		oracle:           oracle,
		reorderThreshold: reorderThreshold,
		minReorderQty:    minReorderQty,
		now:              time.Now,
	}
}

// Assess classifies each line against the snapshot. Pure with respect to the
// snapshot: the same inputs always produce the same partition, and
// Fulfillable + Shortfall == Requested on every result.
func (d *Decider) Assess(lines []model.LineItem, snap model.LedgerState) []model.FeasibilityResult {
	results := make([]model.FeasibilityResult, 0, len(lines))
	for _, line := range lines {
		results = append(results, d.assessLine(line, snap))
	}
	return results
}

func (d *Decider) assessLine(line model.LineItem, snap model.LedgerState) model.FeasibilityResult {
	onHand := int64(0)
	if rec, ok := snap.Inventory[line.ItemID]; ok {
		onHand = rec.OnHand
	}

	fulfillable := line.Quantity
	if onHand < fulfillable {
		fulfillable = onHand
	}
	shortfall := line.Quantity - fulfillable

	res := model.FeasibilityResult{
		ItemID:      line.ItemID,
		Requested:   line.Quantity,
		Fulfillable: fulfillable,
		Shortfall:   shortfall,
	}
	switch {
	case shortfall == 0:
		res.Status = model.StatusFulfillable
	case fulfillable == 0:
		res.Status = model.StatusUnfulfillable
	default:
		res.Status = model.StatusPartial
	}

	if shortfall > 0 && shortfall >= d.reorderThreshold {
		qty := shortfall
		if qty < d.minReorderQty {
			qty = d.minReorderQty
		}
		eta := d.oracle.DeliveryDate(line.ItemID, qty, d.now())
		res.ReorderRecommended = true
		res.ReorderQty = qty
		res.ReorderETA = &eta
	}
	return res
}
