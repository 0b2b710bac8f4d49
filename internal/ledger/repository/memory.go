package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/munderdifflin/fulfillment-service/internal/ledger"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory ledger store. All reads hand out copies so a
// snapshot taken before a commit stays stable.
type MemoryStore struct {
	mu                sync.Mutex
	cash              decimal.Decimal
	opening           decimal.Decimal
	inventory         map[string]model.InventoryRecord
	transactions      []model.Transaction
	allowNegativeCash bool
}

func NewMemoryStore(opening decimal.Decimal, records []model.InventoryRecord, allowNegativeCash bool) *MemoryStore {
	inv := make(map[string]model.InventoryRecord, len(records))
	for _, rec := range records {
		inv[rec.ItemID] = rec
	}
	return &MemoryStore{
		cash:              opening,
		opening:           opening,
		inventory:         inv,
		allowNegativeCash: allowNegativeCash,
	}
}

func (s *MemoryStore) Snapshot(_ context.Context) (model.LedgerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.LedgerState{Cash: s.cash, Inventory: s.inventory}.Clone(), nil
}

// ApplyAtomic validates every mutation against current state before touching
// anything, so a late failure can never leave a partial write behind.
func (s *MemoryStore) ApplyAtomic(_ context.Context, muts []ledger.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cash := s.cash
	pending := make(map[string]int64, len(muts))
	for _, m := range muts {
		rec, ok := s.inventory[m.ItemID]
		if !ok {
			return fmt.Errorf("item %q: %w", m.ItemID, model.ErrUnknownItem)
		}
		next := rec.OnHand + pending[m.ItemID] + m.UnitsDelta
		if next < 0 {
			return fmt.Errorf("item %q: %w", m.ItemID, model.ErrInsufficientStock)
		}
		pending[m.ItemID] += m.UnitsDelta
		cash = cash.Add(m.CashDelta)
	}
	if cash.IsNegative() && !s.allowNegativeCash {
		return model.ErrInsufficientCash
	}

	for itemID, delta := range pending {
		rec := s.inventory[itemID]
		rec.OnHand += delta
		s.inventory[itemID] = rec
	}
	s.cash = cash
	for _, m := range muts {
		s.transactions = append(s.transactions, m.Tx)
	}
	return nil
}

func (s *MemoryStore) Transactions(_ context.Context) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}

func (s *MemoryStore) OpeningBalance(_ context.Context) (decimal.Decimal, error) {
	return s.opening, nil
}

var _ ledger.Store = (*MemoryStore)(nil)
