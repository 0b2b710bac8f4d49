package model

import "github.com/shopspring/decimal"

// InventoryRecord is the ledger's view of one item: units on hand plus the
// prices the ledger values and sells them at. OnHand never goes negative.
type InventoryRecord struct {
	ItemID    string          `db:"item_id" json:"item_id"`
	OnHand    int64           `db:"on_hand" json:"on_hand"`
	UnitCost  decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// LedgerState is a point-in-time copy of the ledger: cash plus every
// inventory record. Snapshots are value copies; mutating one never touches
// the store.
type LedgerState struct {
	Cash      decimal.Decimal            `json:"cash"`
	Inventory map[string]InventoryRecord `json:"inventory"`
}

// Clone returns a deep copy so callers can hold a snapshot across commits.
func (s LedgerState) Clone() LedgerState {
	inv := make(map[string]InventoryRecord, len(s.Inventory))
	for k, v := range s.Inventory {
		inv[k] = v
	}
	return LedgerState{Cash: s.Cash, Inventory: inv}
}

// InventoryValue is the sum of on-hand units priced at unit cost.
func (s LedgerState) InventoryValue() decimal.Decimal {
	total := decimal.Zero
	for _, rec := range s.Inventory {
		total = total.Add(rec.UnitCost.Mul(decimal.NewFromInt(rec.OnHand)))
	}
	return total
}
