package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/munderdifflin/fulfillment-service/internal/ledger"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(onHand int64) *MemoryStore {
	return NewMemoryStore(
		decimal.NewFromInt(1000),
		[]model.InventoryRecord{
			{ItemID: "A4 paper", OnHand: onHand, UnitCost: decimal.NewFromFloat(0.035), UnitPrice: decimal.NewFromFloat(0.05)},
			{ItemID: "Cardstock", OnHand: 50, UnitCost: decimal.NewFromFloat(0.105), UnitPrice: decimal.NewFromFloat(0.15)},
		},
		false,
	)
}

func saleMut(itemID string, units int64, total float64) ledger.Mutation {
	return ledger.Mutation{
		ItemID:     itemID,
		UnitsDelta: -units,
		CashDelta:  decimal.NewFromFloat(total),
		Tx: model.Transaction{
			ID:          itemID + "-tx",
			Kind:        model.TransactionSale,
			ItemID:      itemID,
			Units:       units,
			TotalAmount: decimal.NewFromFloat(total),
		},
	}
}

func TestApplyAtomic_AppliesAllMutations(t *testing.T) {
	store := newStore(100)
	ctx := context.Background()

	err := store.ApplyAtomic(ctx, []ledger.Mutation{
		saleMut("A4 paper", 40, 2),
		saleMut("Cardstock", 10, 1.5),
	})
	require.NoError(t, err)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 60, snap.Inventory["A4 paper"].OnHand)
	assert.EqualValues(t, 40, snap.Inventory["Cardstock"].OnHand)
	assert.True(t, snap.Cash.Equal(decimal.NewFromFloat(1003.5)))

	txs, err := store.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestApplyAtomic_RollsBackWholeBatchOnStockFailure(t *testing.T) {
	store := newStore(100)
	ctx := context.Background()

	// Second line oversells: nothing from the batch may land.
	err := store.ApplyAtomic(ctx, []ledger.Mutation{
		saleMut("A4 paper", 40, 2),
		saleMut("Cardstock", 60, 9),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientStock))

	snap, _ := store.Snapshot(ctx)
	assert.EqualValues(t, 100, snap.Inventory["A4 paper"].OnHand, "first line must be rolled back")
	assert.EqualValues(t, 50, snap.Inventory["Cardstock"].OnHand)
	assert.True(t, snap.Cash.Equal(decimal.NewFromInt(1000)))

	txs, _ := store.Transactions(ctx)
	assert.Empty(t, txs, "no transaction may be appended for a failed batch")
}

func TestApplyAtomic_NeverOversells(t *testing.T) {
	store := newStore(100)
	ctx := context.Background()

	err := store.ApplyAtomic(ctx, []ledger.Mutation{saleMut("A4 paper", 101, 5)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientStock))

	snap, _ := store.Snapshot(ctx)
	assert.EqualValues(t, 100, snap.Inventory["A4 paper"].OnHand)
}

func TestApplyAtomic_AccountsPendingDeltasPerItem(t *testing.T) {
	store := newStore(100)
	ctx := context.Background()

	// Two mutations on the same item must be checked against their
	// combined effect.
	err := store.ApplyAtomic(ctx, []ledger.Mutation{
		saleMut("A4 paper", 60, 3),
		saleMut("A4 paper", 60, 3),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientStock))
}

func TestApplyAtomic_RejectsNegativeCash(t *testing.T) {
	store := newStore(100)
	ctx := context.Background()

	reorder := ledger.Mutation{
		ItemID:     "A4 paper",
		UnitsDelta: 500,
		CashDelta:  decimal.NewFromInt(-2000),
		Tx: model.Transaction{
			ID:          "reorder-tx",
			Kind:        model.TransactionReorder,
			ItemID:      "A4 paper",
			Units:       500,
			TotalAmount: decimal.NewFromInt(2000),
		},
	}
	err := store.ApplyAtomic(ctx, []ledger.Mutation{reorder})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientCash))

	snap, _ := store.Snapshot(ctx)
	assert.EqualValues(t, 100, snap.Inventory["A4 paper"].OnHand)
	assert.True(t, snap.Cash.Equal(decimal.NewFromInt(1000)))
}

func TestApplyAtomic_AllowsNegativeCashWhenConfigured(t *testing.T) {
	store := NewMemoryStore(
		decimal.NewFromInt(100),
		[]model.InventoryRecord{{ItemID: "A4 paper", OnHand: 0}},
		true,
	)
	ctx := context.Background()

	err := store.ApplyAtomic(ctx, []ledger.Mutation{{
		ItemID:     "A4 paper",
		UnitsDelta: 500,
		CashDelta:  decimal.NewFromInt(-2000),
		Tx:         model.Transaction{ID: "tx", Kind: model.TransactionReorder, ItemID: "A4 paper", Units: 500},
	}})
	require.NoError(t, err)

	snap, _ := store.Snapshot(ctx)
	assert.True(t, snap.Cash.Equal(decimal.NewFromInt(-1900)))
}

func TestApplyAtomic_UnknownItem(t *testing.T) {
	store := newStore(100)
	err := store.ApplyAtomic(context.Background(), []ledger.Mutation{saleMut("Vellum", 1, 1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownItem))
}

func TestSnapshot_IsIsolatedCopy(t *testing.T) {
	store := newStore(100)
	ctx := context.Background()

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)

	rec := snap.Inventory["A4 paper"]
	rec.OnHand = 0
	snap.Inventory["A4 paper"] = rec

	fresh, _ := store.Snapshot(ctx)
	assert.EqualValues(t, 100, fresh.Inventory["A4 paper"].OnHand,
		"mutating a snapshot must not touch the store")
}
