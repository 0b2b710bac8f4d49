package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/munderdifflin/fulfillment-service/internal/ledger"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
)

// PGStore keeps the ledger in Postgres: one inventory row per item, a single
// ledger_balance row for cash, and an append-only transactions table.
type PGStore struct {
	DB                *sqlx.DB
	allowNegativeCash bool
}

func NewPGStore(db *sqlx.DB, allowNegativeCash bool) *PGStore {
	return &PGStore{DB: db, allowNegativeCash: allowNegativeCash}
}

func (s *PGStore) Snapshot(ctx context.Context) (model.LedgerState, error) {
	var cash decimal.Decimal
	if err := s.DB.GetContext(ctx, &cash, `SELECT cash FROM ledger_balance WHERE id = 1`); err != nil {
		return model.LedgerState{}, fmt.Errorf("read cash: %w: %v", model.ErrLedgerUnavailable, err)
	}

	var records []model.InventoryRecord
	query := `SELECT item_id, on_hand, unit_cost, unit_price FROM inventory`
	if err := s.DB.SelectContext(ctx, &records, query); err != nil {
		return model.LedgerState{}, fmt.Errorf("read inventory: %w: %v", model.ErrLedgerUnavailable, err)
	}

	inv := make(map[string]model.InventoryRecord, len(records))
	for _, rec := range records {
		inv[rec.ItemID] = rec
	}
	return model.LedgerState{Cash: cash, Inventory: inv}, nil
}

func (s *PGStore) ApplyAtomic(ctx context.Context, muts []ledger.Mutation) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w: %v", model.ErrLedgerUnavailable, err)
	}
	defer tx.Rollback()

	cashDelta := decimal.Zero
	for _, m := range muts {
		cashDelta = cashDelta.Add(m.CashDelta)

		// Conditional update: the WHERE clause is the commit-time
		// stock re-check.
		res, err := tx.ExecContext(ctx,
			`UPDATE inventory SET on_hand = on_hand + $1 WHERE item_id = $2 AND on_hand + $1 >= 0`,
			m.UnitsDelta, m.ItemID,
		)
		if err != nil {
			return fmt.Errorf("update stock: %w: %v", model.ErrLedgerUnavailable, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update stock: %w: %v", model.ErrLedgerUnavailable, err)
		}
		if affected == 0 {
			var exists bool
			if err := tx.GetContext(ctx, &exists,
				`SELECT EXISTS (SELECT 1 FROM inventory WHERE item_id = $1)`, m.ItemID); err != nil {
				return fmt.Errorf("check item: %w: %v", model.ErrLedgerUnavailable, err)
			}
			if !exists {
				return fmt.Errorf("item %q: %w", m.ItemID, model.ErrUnknownItem)
			}
			return fmt.Errorf("item %q: %w", m.ItemID, model.ErrInsufficientStock)
		}
	}

	cashQuery := `UPDATE ledger_balance SET cash = cash + $1 WHERE id = 1 AND cash + $1 >= 0`
	if s.allowNegativeCash {
		cashQuery = `UPDATE ledger_balance SET cash = cash + $1 WHERE id = 1`
	}
	res, err := tx.ExecContext(ctx, cashQuery, cashDelta)
	if err != nil {
		return fmt.Errorf("update cash: %w: %v", model.ErrLedgerUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cash: %w: %v", model.ErrLedgerUnavailable, err)
	}
	if affected == 0 {
		return model.ErrInsufficientCash
	}

	insert := `
        INSERT INTO transactions (
            id, order_id, kind, item_id, units, unit_amount, total_amount, reorder_eta, created_at
        )
        VALUES (
            :id, :order_id, :kind, :item_id, :units, :unit_amount, :total_amount, :reorder_eta, :created_at
        )
    `
	for _, m := range muts {
		if _, err := tx.NamedExecContext(ctx, insert, m.Tx); err != nil {
			return fmt.Errorf("append transaction: %w: %v", model.ErrLedgerUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w: %v", model.ErrLedgerUnavailable, err)
	}
	return nil
}

func (s *PGStore) Transactions(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	query := `SELECT id, order_id, kind, item_id, units, unit_amount, total_amount, reorder_eta, created_at
              FROM transactions ORDER BY created_at, id`
	if err := s.DB.SelectContext(ctx, &txs, query); err != nil {
		return nil, fmt.Errorf("read transactions: %w: %v", model.ErrLedgerUnavailable, err)
	}
	return txs, nil
}

func (s *PGStore) OpeningBalance(ctx context.Context) (decimal.Decimal, error) {
	var opening decimal.Decimal
	if err := s.DB.GetContext(ctx, &opening, `SELECT opening_cash FROM ledger_balance WHERE id = 1`); err != nil {
		return decimal.Zero, fmt.Errorf("read opening balance: %w: %v", model.ErrLedgerUnavailable, err)
	}
	return opening, nil
}

var _ ledger.Store = (*PGStore)(nil)
