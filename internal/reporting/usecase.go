package reporting

import (
	"context"
	"time"

	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
)

// UseCase is the read-only reporting surface over the ledger. Pure reads:
// calling any of these twice with no intervening commit returns identical
// values.
type UseCase interface {
	CashBalance(ctx context.Context) (decimal.Decimal, error)
	InventorySnapshot(ctx context.Context) (model.LedgerState, error)
	FinancialReport(ctx context.Context, asOf time.Time) (*model.FinancialReport, error)
}
