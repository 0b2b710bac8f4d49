package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/munderdifflin/fulfillment-service/internal/ledger"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/munderdifflin/fulfillment-service/internal/reporting"
	"github.com/munderdifflin/fulfillment-service/pkg/cache"
	"github.com/munderdifflin/fulfillment-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const topSellerCount = 5

type reportingUseCase struct {
	ledger ledger.UseCase
	cache  *cache.RedisClient // optional report cache
	logger logger.ZapLogger
}

func NewReportingUseCase(led ledger.UseCase, cache *cache.RedisClient, log logger.ZapLogger) reporting.UseCase {
	return &reportingUseCase{
		ledger: led,
		cache:  cache,
		logger: log,
	}
}

func (uc *reportingUseCase) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	return uc.ledger.CashBalance(ctx)
}

func (uc *reportingUseCase) InventorySnapshot(ctx context.Context) (model.LedgerState, error) {
	return uc.ledger.Snapshot(ctx)
}

// FinancialReport replays cash as of the requested date from the transaction
// log and values current inventory at unit cost. Reports are cached briefly;
// the TTL bounds staleness.
func (uc *reportingUseCase) FinancialReport(ctx context.Context, asOf time.Time) (*model.FinancialReport, error) {
	cacheKey := fmt.Sprintf("reports:financial:%s", asOf.UTC().Format("2006-01-02T15:04:05"))
	if uc.cache != nil {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var report model.FinancialReport
			if err := json.Unmarshal([]byte(val), &report); err == nil {
				return &report, nil
			}
		}
	}

	// Replay validates log consistency before we report from it.
	if _, err := uc.ledger.Replay(ctx); err != nil {
		return nil, err
	}

	txs, err := uc.ledger.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cash := snap.Cash
	if !asOf.IsZero() {
		cash, err = uc.cashAsOf(ctx, txs, asOf)
		if err != nil {
			return nil, err
		}
	}

	report := &model.FinancialReport{
		AsOf:           asOf,
		CashBalance:    cash,
		InventoryValue: snap.InventoryValue(),
		TopSellers:     topSellers(txs, asOf),
	}
	report.TotalAssets = report.CashBalance.Add(report.InventoryValue)

	items := make([]model.InventoryLine, 0, len(snap.Inventory))
	for _, rec := range snap.Inventory {
		items = append(items, model.InventoryLine{
			ItemID:   rec.ItemID,
			Stock:    rec.OnHand,
			UnitCost: rec.UnitCost,
			Value:    rec.UnitCost.Mul(decimal.NewFromInt(rec.OnHand)),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	report.InventorySummary = items

	if uc.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute).Err(); err != nil {
				uc.logger.Warn("failed to cache financial report", zap.Error(err))
			}
		}
	}
	return report, nil
}

func (uc *reportingUseCase) cashAsOf(ctx context.Context, txs []model.Transaction, asOf time.Time) (decimal.Decimal, error) {
	openingBalance, err := uc.openingBalance(ctx, txs)
	if err != nil {
		return decimal.Zero, err
	}
	cash := openingBalance
	for _, tx := range txs {
		if tx.CreatedAt.After(asOf) {
			continue
		}
		cash = cash.Add(tx.CashDelta())
	}
	return cash, nil
}

// openingBalance back-derives the opening cash from the live balance and the
// full log, so reporting needs no extra store access.
func (uc *reportingUseCase) openingBalance(ctx context.Context, txs []model.Transaction) (decimal.Decimal, error) {
	snap, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	opening := snap.Cash
	for _, tx := range txs {
		opening = opening.Sub(tx.CashDelta())
	}
	return opening, nil
}

func topSellers(txs []model.Transaction, asOf time.Time) []model.TopSeller {
	type agg struct {
		units   int64
		revenue decimal.Decimal
	}
	byItem := make(map[string]*agg)
	for _, tx := range txs {
		if tx.Kind != model.TransactionSale || tx.ItemID == "" {
			continue
		}
		if !asOf.IsZero() && tx.CreatedAt.After(asOf) {
			continue
		}
		a, ok := byItem[tx.ItemID]
		if !ok {
			a = &agg{revenue: decimal.Zero}
			byItem[tx.ItemID] = a
		}
		a.units += tx.Units
		a.revenue = a.revenue.Add(tx.TotalAmount)
	}

	sellers := make([]model.TopSeller, 0, len(byItem))
	for itemID, a := range byItem {
		sellers = append(sellers, model.TopSeller{
			ItemID:       itemID,
			TotalUnits:   a.units,
			TotalRevenue: a.revenue,
		})
	}
	sort.Slice(sellers, func(i, j int) bool {
		if !sellers[i].TotalRevenue.Equal(sellers[j].TotalRevenue) {
			return sellers[i].TotalRevenue.GreaterThan(sellers[j].TotalRevenue)
		}
		return sellers[i].ItemID < sellers[j].ItemID
	})
	if len(sellers) > topSellerCount {
		sellers = sellers[:topSellerCount]
	}
	return sellers
}
