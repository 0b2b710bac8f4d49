package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/munderdifflin/fulfillment-service/internal/catalog"
	catalogrepo "github.com/munderdifflin/fulfillment-service/internal/catalog/repository"
	"github.com/munderdifflin/fulfillment-service/internal/feasibility"
	"github.com/munderdifflin/fulfillment-service/internal/fulfillment"
	"github.com/munderdifflin/fulfillment-service/internal/ledger"
	ledgerrepo "github.com/munderdifflin/fulfillment-service/internal/ledger/repository"
	ledgeruc "github.com/munderdifflin/fulfillment-service/internal/ledger/usecase"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/munderdifflin/fulfillment-service/internal/pricing"
	"github.com/munderdifflin/fulfillment-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testReorderThreshold = 100
	testMinReorderQty    = 500
)

type fixture struct {
	uc     fulfillment.UseCase
	ledger ledger.UseCase
	store  ledger.Store
}

// newFixture wires the pipeline against in-memory stores. stock maps item id
// to opening on-hand units; every item sells at $0.05 and restocks at $0.035.
func newFixture(t *testing.T, openingCash int64, stock map[string]int64, store ledger.Store) *fixture {
	t.Helper()

	var items []model.Item
	var records []model.InventoryRecord
	for id, onHand := range stock {
		items = append(items, model.Item{
			ItemID:        id,
			Category:      "paper",
			UnitPrice:     decimal.NewFromFloat(0.05),
			UnitCost:      decimal.NewFromFloat(0.035),
			MinReorderQty: testMinReorderQty,
		})
		records = append(records, model.InventoryRecord{
			ItemID:    id,
			OnHand:    onHand,
			UnitCost:  decimal.NewFromFloat(0.035),
			UnitPrice: decimal.NewFromFloat(0.05),
		})
	}

	if store == nil {
		store = ledgerrepo.NewMemoryStore(decimal.NewFromInt(openingCash), records, false)
	}
	led := ledgeruc.NewLedgerUseCase(store, nil, logger.NewNop())

	var cat catalog.Repository = catalogrepo.NewMemoryRepository(items)
	decider := feasibility.NewDecider(feasibility.NewLeadTimeOracle(), testReorderThreshold, testMinReorderQty)

	return &fixture{
		uc:     NewFulfillmentUseCase(cat, led, pricing.NewEngine(), decider, nil, nil, logger.NewNop()),
		ledger: led,
		store:  store,
	}
}

func TestProcessOrder_FullCommitWithBulkDiscount(t *testing.T) {
	f := newFixture(t, 50000, map[string]int64{"A4 paper": 10000}, nil)
	ctx := context.Background()

	resp, err := f.uc.ProcessOrder(ctx, []model.LineItem{{ItemID: "A4 paper", Quantity: 6000}})
	require.NoError(t, err)

	assert.Equal(t, model.OrderCommitted, resp.State)
	require.Len(t, resp.Lines, 1)
	line := resp.Lines[0]
	assert.EqualValues(t, 6000, line.Committed)
	assert.EqualValues(t, 0, line.Shortfall)
	assert.True(t, line.DiscountRate.Equal(decimal.NewFromFloat(0.12)))
	assert.True(t, line.LineTotal.Equal(decimal.NewFromInt(264)), "6000 x $0.05 less 12%% = $264, got %s", line.LineTotal)

	require.NotNil(t, resp.Quote)
	assert.True(t, resp.Quote.Total.Equal(decimal.NewFromInt(264)))
	assert.Nil(t, resp.FullQuote, "full quote is redundant when everything committed")

	assert.EqualValues(t, 4000, resp.Closing.Inventory["A4 paper"].OnHand)
	assert.True(t, resp.Closing.Cash.Equal(decimal.NewFromInt(50264)))
}

func TestProcessOrder_PartialCommitTriggersReorder(t *testing.T) {
	f := newFixture(t, 50000, map[string]int64{"Cardstock": 50}, nil)
	ctx := context.Background()

	resp, err := f.uc.ProcessOrder(ctx, []model.LineItem{{ItemID: "Cardstock", Quantity: 200}})
	require.NoError(t, err)

	assert.Equal(t, model.OrderPartiallyCommitted, resp.State)
	require.Len(t, resp.Lines, 1)
	line := resp.Lines[0]
	assert.Equal(t, model.StatusPartial, line.Status)
	assert.EqualValues(t, 50, line.Committed)
	assert.EqualValues(t, 150, line.Shortfall)
	assert.Contains(t, line.Reason, "only 50 of 200 units in stock")

	// Shortfall 150 clears the threshold; quantity floors at the item minimum.
	assert.True(t, line.Reordered)
	assert.EqualValues(t, 500, line.ReorderQty)
	require.NotNil(t, line.ReorderETA)

	// 50 x $0.05 sold (below any discount band), 500 x $0.035 reordered.
	assert.EqualValues(t, 550, resp.Closing.Inventory["Cardstock"].OnHand)
	wantCash := decimal.NewFromInt(50000).
		Add(decimal.NewFromFloat(2.5)).
		Sub(decimal.NewFromFloat(17.5))
	assert.True(t, resp.Closing.Cash.Equal(wantCash), "want %s got %s", wantCash, resp.Closing.Cash)

	require.NotNil(t, resp.FullQuote, "partial commit must still show the full-order quote")
	assert.True(t, resp.FullQuote.Total.Equal(decimal.NewFromFloat(9.8)))

	txs, err := f.ledger.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestProcessOrder_ShortfallBelowThresholdIsRejected(t *testing.T) {
	f := newFixture(t, 50000, map[string]int64{"Letterhead": 0}, nil)
	ctx := context.Background()

	resp, err := f.uc.ProcessOrder(ctx, []model.LineItem{{ItemID: "Letterhead", Quantity: 50}})
	require.NoError(t, err)

	assert.Equal(t, model.OrderRejected, resp.State)
	require.Len(t, resp.Lines, 1)
	line := resp.Lines[0]
	assert.Equal(t, model.StatusUnfulfillable, line.Status)
	assert.False(t, line.Reordered, "shortfall of 50 sits below the reorder threshold")
	assert.Contains(t, line.Reason, "out of stock")

	// Nothing may have touched the ledger.
	assert.True(t, resp.Closing.Cash.Equal(decimal.NewFromInt(50000)))
	txs, err := f.ledger.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestProcessOrder_UnknownItemDoesNotBlockSiblings(t *testing.T) {
	f := newFixture(t, 50000, map[string]int64{"A4 paper": 1000}, nil)
	ctx := context.Background()

	resp, err := f.uc.ProcessOrder(ctx, []model.LineItem{
		{ItemID: "A4 paper", Quantity: 300},
		{ItemID: "Unobtainium sheets", Quantity: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderPartiallyCommitted, resp.State)
	require.Len(t, resp.Lines, 2)

	assert.EqualValues(t, 300, resp.Lines[0].Committed)
	assert.True(t, resp.Lines[0].DiscountRate.Equal(decimal.NewFromFloat(0.02)))

	assert.Equal(t, model.StatusUnfulfillable, resp.Lines[1].Status)
	assert.EqualValues(t, 0, resp.Lines[1].Committed)
	assert.Equal(t, "unrecognized item", resp.Lines[1].Reason)

	assert.EqualValues(t, 700, resp.Closing.Inventory["A4 paper"].OnHand)
}

func TestProcessOrder_InvalidQuantityRejectsOnlyThatLine(t *testing.T) {
	f := newFixture(t, 50000, map[string]int64{"A4 paper": 1000}, nil)

	resp, err := f.uc.ProcessOrder(context.Background(), []model.LineItem{
		{ItemID: "A4 paper", Quantity: -5},
		{ItemID: "A4 paper", Quantity: 100},
	})
	require.NoError(t, err)

	assert.Equal(t, "quantity must be positive", resp.Lines[0].Reason)
	assert.EqualValues(t, 0, resp.Lines[0].Committed)
	assert.EqualValues(t, 100, resp.Lines[1].Committed)
}

func TestProcessOrder_EmptyOrderIsRejected(t *testing.T) {
	f := newFixture(t, 50000, map[string]int64{"A4 paper": 1000}, nil)

	resp, err := f.uc.ProcessOrder(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, model.OrderRejected, resp.State)
	assert.Empty(t, resp.Lines)
	assert.True(t, resp.Closing.Cash.Equal(decimal.NewFromInt(50000)))
}

func TestProcessOrder_ReorderFailureDoesNotFailTheOrder(t *testing.T) {
	// Enough cash for the sale but not for the 500-unit restock.
	f := newFixture(t, 10, map[string]int64{"Cardstock": 50}, nil)
	ctx := context.Background()

	resp, err := f.uc.ProcessOrder(ctx, []model.LineItem{{ItemID: "Cardstock", Quantity: 200}})
	require.NoError(t, err)

	assert.Equal(t, model.OrderPartiallyCommitted, resp.State)
	line := resp.Lines[0]
	assert.EqualValues(t, 50, line.Committed)
	assert.False(t, line.Reordered)
	assert.Contains(t, line.Reason, "reorder skipped: insufficient cash")

	txs, err := f.ledger.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, model.TransactionSale, txs[0].Kind)
}

// contendedStore simulates another order landing between the decision snapshot
// and the commit: the first ApplyAtomic drains stock and reports the conflict.
type contendedStore struct {
	*ledgerrepo.MemoryStore

	mu    sync.Mutex
	drain ledger.Mutation
	fired bool
}

func (s *contendedStore) ApplyAtomic(ctx context.Context, muts []ledger.Mutation) error {
	s.mu.Lock()
	if !s.fired {
		s.fired = true
		drainErr := s.MemoryStore.ApplyAtomic(ctx, []ledger.Mutation{s.drain})
		s.mu.Unlock()
		if drainErr != nil {
			return drainErr
		}
		return model.ErrInsufficientStock
	}
	s.mu.Unlock()
	return s.MemoryStore.ApplyAtomic(ctx, muts)
}

func TestProcessOrder_RetriesOnceAgainstFreshStateUnderContention(t *testing.T) {
	mem := ledgerrepo.NewMemoryStore(
		decimal.NewFromInt(50000),
		[]model.InventoryRecord{{
			ItemID:    "A4 paper",
			OnHand:    1000,
			UnitCost:  decimal.NewFromFloat(0.035),
			UnitPrice: decimal.NewFromFloat(0.05),
		}},
		false,
	)
	store := &contendedStore{
		MemoryStore: mem,
		drain: ledger.Mutation{
			ItemID:     "A4 paper",
			UnitsDelta: -700,
			CashDelta:  decimal.NewFromInt(35),
			Tx: model.Transaction{
				ID:          "rival-sale",
				OrderID:     "rival",
				Kind:        model.TransactionSale,
				ItemID:      "A4 paper",
				Units:       700,
				TotalAmount: decimal.NewFromInt(35),
			},
		},
	}
	f := newFixture(t, 0, map[string]int64{"A4 paper": 1000}, store)
	ctx := context.Background()

	resp, err := f.uc.ProcessOrder(ctx, []model.LineItem{{ItemID: "A4 paper", Quantity: 1000}})
	require.NoError(t, err)

	// Retry re-assessed against the drained state and committed the 300
	// units still on hand; the 700-unit shortfall triggered a reorder.
	assert.Equal(t, model.OrderPartiallyCommitted, resp.State)
	line := resp.Lines[0]
	assert.EqualValues(t, 300, line.Committed)
	assert.EqualValues(t, 700, line.Shortfall)
	assert.True(t, line.Reordered)
	assert.EqualValues(t, 700, line.ReorderQty)

	assert.EqualValues(t, 700, resp.Closing.Inventory["A4 paper"].OnHand)
}
