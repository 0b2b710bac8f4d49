package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/munderdifflin/fulfillment-service/internal/ledger"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/munderdifflin/fulfillment-service/pkg/cache"
	"github.com/munderdifflin/fulfillment-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const commitLockKey = "lock:ledger:commit"

type ledgerUseCase struct {
	store  ledger.Store
	cache  *cache.RedisClient // optional distributed commit lock
	logger logger.ZapLogger

	// commitMu serializes commits within the process; decision-phase
	// snapshots never take it.
	commitMu sync.Mutex
}

func NewLedgerUseCase(store ledger.Store, cache *cache.RedisClient, log logger.ZapLogger) ledger.UseCase {
	return &ledgerUseCase{
		store:  store,
		cache:  cache,
		logger: log,
	}
}

func (uc *ledgerUseCase) CommitSale(ctx context.Context, orderID string, lines []ledger.SaleLine) ([]model.Transaction, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	now := time.Now()
	muts := make([]ledger.Mutation, 0, len(lines))
	for _, l := range lines {
		if l.Units <= 0 {
			return nil, fmt.Errorf("item %q: %w", l.ItemID, model.ErrInvalidQuantity)
		}
		total := l.Total
		if total.IsZero() {
			total = l.UnitPrice.Mul(decimal.NewFromInt(l.Units))
		}
		muts = append(muts, ledger.Mutation{
			ItemID:     l.ItemID,
			UnitsDelta: -l.Units,
			CashDelta:  total,
			Tx: model.Transaction{
				ID:          uuid.New().String(),
				OrderID:     orderID,
				Kind:        model.TransactionSale,
				ItemID:      l.ItemID,
				Units:       l.Units,
				UnitAmount:  l.UnitPrice,
				TotalAmount: total,
				CreatedAt:   now,
			},
		})
	}

	if err := uc.apply(ctx, muts); err != nil {
		return nil, err
	}

	txs := make([]model.Transaction, len(muts))
	for i, m := range muts {
		txs[i] = m.Tx
	}
	uc.logger.Info("sale committed",
		zap.String("order_id", orderID),
		zap.Int("lines", len(txs)),
	)
	return txs, nil
}

func (uc *ledgerUseCase) CommitReorder(ctx context.Context, orderID, itemID string, units int64, unitCost decimal.Decimal, eta *time.Time) (*model.Transaction, error) {
	if units <= 0 {
		return nil, fmt.Errorf("item %q: %w", itemID, model.ErrInvalidQuantity)
	}

	total := unitCost.Mul(decimal.NewFromInt(units))
	tx := model.Transaction{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		Kind:        model.TransactionReorder,
		ItemID:      itemID,
		Units:       units,
		UnitAmount:  unitCost,
		TotalAmount: total,
		ReorderETA:  eta,
		CreatedAt:   time.Now(),
	}

	mut := ledger.Mutation{
		ItemID:     itemID,
		UnitsDelta: units,
		CashDelta:  total.Neg(),
		Tx:         tx,
	}
	if err := uc.apply(ctx, []ledger.Mutation{mut}); err != nil {
		return nil, err
	}

	uc.logger.Info("reorder committed",
		zap.String("order_id", orderID),
		zap.String("item_id", itemID),
		zap.Int64("units", units),
	)
	return &tx, nil
}

// apply runs one atomic store mutation under the commit locks.
func (uc *ledgerUseCase) apply(ctx context.Context, muts []ledger.Mutation) error {
	uc.commitMu.Lock()
	defer uc.commitMu.Unlock()

	if uc.cache != nil {
		lockValue := uuid.New().String()
		acquired := false
		for i := 0; i < 3; i++ {
			ok, err := uc.cache.AcquireLock(ctx, commitLockKey, lockValue, 5*time.Second)
			if err != nil {
				uc.logger.Error("failed to acquire commit lock", zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if !acquired {
			return fmt.Errorf("commit lock busy: %w", model.ErrLedgerUnavailable)
		}
		defer uc.cache.ReleaseLock(ctx, commitLockKey, lockValue)
	}

	return uc.store.ApplyAtomic(ctx, muts)
}

func (uc *ledgerUseCase) Snapshot(ctx context.Context) (model.LedgerState, error) {
	return uc.store.Snapshot(ctx)
}

func (uc *ledgerUseCase) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	snap, err := uc.store.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snap.Cash, nil
}

func (uc *ledgerUseCase) Transactions(ctx context.Context) ([]model.Transaction, error) {
	return uc.store.Transactions(ctx)
}

func (uc *ledgerUseCase) Replay(ctx context.Context) (decimal.Decimal, error) {
	opening, err := uc.store.OpeningBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	txs, err := uc.store.Transactions(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	replayed := opening
	for _, tx := range txs {
		replayed = replayed.Add(tx.CashDelta())
	}

	snap, err := uc.store.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !replayed.Equal(snap.Cash) {
		uc.logger.Error("ledger replay mismatch",
			zap.String("replayed", replayed.String()),
			zap.String("live", snap.Cash.String()),
		)
		return decimal.Zero, fmt.Errorf("replayed cash %s != live cash %s: %w",
			replayed, snap.Cash, model.ErrLedgerUnavailable)
	}
	return replayed, nil
}
