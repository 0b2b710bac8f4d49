package ledger

import (
	"context"
	"time"

	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
)

// SaleLine is one line of a sale commit. Total is the amount the customer
// pays for the line (discount already applied); UnitPrice is the catalog
// price recorded on the transaction.
type SaleLine struct {
	ItemID    string
	Units     int64
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// UseCase is the transaction committer plus the ledger's read surface.
// Commits are serialized: one completes fully before the next begins.
type UseCase interface {
	// CommitSale applies every line as one atomic unit. If any line fails
	// its stock re-check the whole order's sale effects are rolled back.
	CommitSale(ctx context.Context, orderID string, lines []SaleLine) ([]model.Transaction, error)
	// CommitReorder adds stock and subtracts cash synchronously; eta is
	// recorded on the transaction as informational metadata.
	CommitReorder(ctx context.Context, orderID, itemID string, units int64, unitCost decimal.Decimal, eta *time.Time) (*model.Transaction, error)

	Snapshot(ctx context.Context) (model.LedgerState, error)
	CashBalance(ctx context.Context) (decimal.Decimal, error)
	Transactions(ctx context.Context) ([]model.Transaction, error)
	// Replay recomputes cash from the opening balance and the transaction
	// log and verifies it matches the live balance.
	Replay(ctx context.Context) (decimal.Decimal, error)
}
