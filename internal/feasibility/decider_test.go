package feasibility

import (
	"testing"
	"time"

	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func snapshotWith(itemID string, onHand int64) model.LedgerState {
	return model.LedgerState{
		Cash: decimal.NewFromInt(1000),
		Inventory: map[string]model.InventoryRecord{
			itemID: {ItemID: itemID, OnHand: onHand},
		},
	}
}

func newTestDecider() *Decider {
	return NewDecider(NewLeadTimeOracle(), 100, 500)
}

func TestAssess_Fulfillable(t *testing.T) {
	d := newTestDecider()
	results := d.Assess(
		[]model.LineItem{{ItemID: "A4 paper", Quantity: 300}},
		snapshotWith("A4 paper", 1000),
	)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, model.StatusFulfillable, r.Status)
	assert.EqualValues(t, 300, r.Fulfillable)
	assert.EqualValues(t, 0, r.Shortfall)
	assert.False(t, r.ReorderRecommended)
}

func TestAssess_PartialWithReorder(t *testing.T) {
	d := newTestDecider()
	results := d.Assess(
		[]model.LineItem{{ItemID: "Cardstock", Quantity: 200}},
		snapshotWith("Cardstock", 50),
	)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, model.StatusPartial, r.Status)
	assert.EqualValues(t, 50, r.Fulfillable)
	assert.EqualValues(t, 150, r.Shortfall)

	// Shortfall 150 >= threshold 100: reorder recommended, floored to the
	// minimum supplier quantity.
	require.True(t, r.ReorderRecommended)
	assert.EqualValues(t, 500, r.ReorderQty)
	require.NotNil(t, r.ReorderETA)
	// 500 units fall in the 101-1000 lead-time band (4 days).
	days := int(r.ReorderETA.Sub(time.Now()).Hours()/24 + 0.5)
	assert.Equal(t, 4, days)
}

func TestAssess_UnfulfillableBelowThreshold(t *testing.T) {
	d := newTestDecider()
	results := d.Assess(
		[]model.LineItem{{ItemID: "Glossy paper", Quantity: 10}},
		snapshotWith("Glossy paper", 0),
	)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, model.StatusUnfulfillable, r.Status)
	assert.EqualValues(t, 0, r.Fulfillable)
	assert.EqualValues(t, 10, r.Shortfall)
	// Shortfall below the reorder threshold: advisory only, no reorder.
	assert.False(t, r.ReorderRecommended)
}

func TestAssess_UnknownItemInSnapshotIsOutOfStock(t *testing.T) {
	d := newTestDecider()
	results := d.Assess(
		[]model.LineItem{{ItemID: "Banner paper", Quantity: 120}},
		snapshotWith("A4 paper", 500),
	)
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusUnfulfillable, results[0].Status)
	assert.True(t, results[0].ReorderRecommended)
}

func TestLeadTimeOracle_Bands(t *testing.T) {
	oracle := NewLeadTimeOracle()
	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		qty  int64
		days int
	}{
		{10, 0},
		{11, 1},
		{100, 1},
		{101, 4},
		{1000, 4},
		{1001, 7},
	}
	for _, tt := range tests {
		got := oracle.DeliveryDate("A4 paper", tt.qty, from)
		assert.Equal(t, from.AddDate(0, 0, tt.days), got, "qty %d", tt.qty)
	}
}

func TestProperty_FeasibilityPartition(t *testing.T) {
	d := newTestDecider()

	rapid.Check(t, func(t *rapid.T) {
		requested := rapid.Int64Range(1, 10000).Draw(t, "requested")
		onHand := rapid.Int64Range(0, 10000).Draw(t, "onHand")

		results := d.Assess(
			[]model.LineItem{{ItemID: "A4 paper", Quantity: requested}},
			snapshotWith("A4 paper", onHand),
		)
		r := results[0]

		if r.Fulfillable+r.Shortfall != r.Requested {
			t.Fatalf("partition broken: %d + %d != %d", r.Fulfillable, r.Shortfall, r.Requested)
		}

		// Status is a pure function of (requested, onHand).
		var want model.FeasibilityStatus
		switch {
		case onHand >= requested:
			want = model.StatusFulfillable
		case onHand == 0:
			want = model.StatusUnfulfillable
		default:
			want = model.StatusPartial
		}
		if r.Status != want {
			t.Fatalf("status %s, want %s (requested=%d onHand=%d)", r.Status, want, requested, onHand)
		}
	})
}
