package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/munderdifflin/fulfillment-service/internal/catalog"
	"github.com/munderdifflin/fulfillment-service/internal/events"
	"github.com/munderdifflin/fulfillment-service/internal/feasibility"
	"github.com/munderdifflin/fulfillment-service/internal/fulfillment"
	"github.com/munderdifflin/fulfillment-service/internal/ledger"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/munderdifflin/fulfillment-service/internal/pricing"
	"github.com/munderdifflin/fulfillment-service/internal/quotes"
	"github.com/munderdifflin/fulfillment-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fulfillmentUseCase struct {
	catalog   catalog.Repository
	ledger    ledger.UseCase
	pricer    *pricing.Engine
	decider   *feasibility.Decider
	quotes    quotes.UseCase   // optional quote history
	publisher events.Publisher // optional event stream
	logger    logger.ZapLogger
}

func NewFulfillmentUseCase(
	cat catalog.Repository,
	led ledger.UseCase,
	pricer *pricing.Engine,
	decider *feasibility.Decider,
	quotesUC quotes.UseCase,
	publisher events.Publisher,
	log logger.ZapLogger,
) fulfillment.UseCase {
	return &fulfillmentUseCase{
		catalog:   cat,
		ledger:    led,
		pricer:    pricer,
		decider:   decider,
		quotes:    quotesUC,
		publisher: publisher,
		logger:    log,
	}
}

// ProcessOrder runs one order through the pipeline:
// snapshot → feasibility → pricing (on fulfillable quantities) → atomic sale
// commit (one bounded retry under contention) → policy-gated reorders →
// response. Invalid lines are rejected individually; sibling lines proceed.
func (uc *fulfillmentUseCase) ProcessOrder(ctx context.Context, lines []model.LineItem) (*model.OrderResponse, error) {
	orderID := uuid.New().String()
	resp := &model.OrderResponse{
		OrderID:   orderID,
		State:     model.OrderReceived,
		CreatedAt: time.Now(),
	}

	outcomes := make([]model.LineOutcome, len(lines))
	var valid []model.LineItem
	items := make(map[string]model.Item)

	for i, line := range lines {
		out := model.LineOutcome{
			ItemID:    line.ItemID,
			Requested: line.Quantity,
			Status:    model.StatusUnfulfillable,
		}
		switch {
		case line.Quantity <= 0:
			out.Reason = "quantity must be positive"
		default:
			item, err := uc.catalog.GetItem(ctx, line.ItemID)
			if err != nil {
				return nil, fmt.Errorf("catalog lookup: %w: %v", model.ErrLedgerUnavailable, err)
			}
			if item == nil {
				out.Reason = "unrecognized item"
			} else {
				items[line.ItemID] = *item
				valid = append(valid, line)
			}
		}
		outcomes[i] = out
	}

	if len(valid) == 0 {
		// covers the explicit "nothing parsed" signal (empty input) too
		resp.Lines = outcomes
		return uc.reject(ctx, resp, "no items recognized")
	}

	snap, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	results := uc.decider.Assess(valid, snap)
	resp.State = model.OrderAssessed

	prices := make(map[string]decimal.Decimal, len(items))
	for id, item := range items {
		prices[id] = item.UnitPrice
	}

	// Informational quote: what full fulfillment of the valid lines would
	// have cost.
	fullQuote, err := uc.pricer.Quote(valid, prices)
	if err != nil {
		return nil, fmt.Errorf("price full order: %w", err)
	}

	committedQuote, saleTxs, commitErr := uc.commitSales(ctx, orderID, results, prices)
	if commitErr != nil {
		if !isConstraintErr(commitErr) {
			return nil, commitErr
		}
		// Contention on the first attempt: re-run feasibility against
		// fresh state once and try again.
		freshSnap, err := uc.ledger.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		results = uc.decider.Assess(valid, freshSnap)
		committedQuote, saleTxs, commitErr = uc.commitSales(ctx, orderID, results, prices)
		if commitErr != nil {
			if !isConstraintErr(commitErr) {
				return nil, commitErr
			}
			// Retry exhausted: degrade every line to its now-true
			// feasibility and commit nothing.
			uc.logger.Warn("sale commit degraded after retry",
				zap.String("order_id", orderID), zap.Error(commitErr))
			finalSnap, err := uc.ledger.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			results = uc.decider.Assess(valid, finalSnap)
			committedQuote = nil
			saleTxs = nil
		}
	}
	resp.State = model.OrderPriced

	committed := make(map[string]model.QuoteLine)
	if committedQuote != nil {
		for _, ql := range committedQuote.Lines {
			committed[ql.ItemID] = ql
		}
	}

	reorderTxs := uc.commitReorders(ctx, orderID, results, items, outcomes, lines)

	uc.fillOutcomes(outcomes, lines, results, committed, saleTxs != nil)

	resp.Lines = outcomes
	resp.Quote = committedQuote
	if committedQuote == nil || !fullQuote.Total.Equal(committedQuote.Total) {
		resp.FullQuote = fullQuote
	}
	resp.State = uc.resolveState(lines, outcomes, saleTxs, reorderTxs)

	closing, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	resp.Closing = closing

	uc.publish(ctx, append(saleTxs, reorderTxs...))
	uc.recordQuote(ctx, orderID, committedQuote)

	uc.logger.Info("order processed",
		zap.String("order_id", orderID),
		zap.String("state", string(resp.State)),
		zap.Int("lines", len(lines)),
	)
	return resp, nil
}

// commitSales prices the fulfillable quantities and commits them as one
// atomic unit. Returns nil quote and txs when nothing is committable.
func (uc *fulfillmentUseCase) commitSales(
	ctx context.Context,
	orderID string,
	results []model.FeasibilityResult,
	prices map[string]decimal.Decimal,
) (*model.Quote, []model.Transaction, error) {
	var commitLines []model.LineItem
	for _, r := range results {
		if r.Fulfillable > 0 {
			commitLines = append(commitLines, model.LineItem{ItemID: r.ItemID, Quantity: r.Fulfillable})
		}
	}
	if len(commitLines) == 0 {
		return nil, nil, nil
	}

	quote, err := uc.pricer.Quote(commitLines, prices)
	if err != nil {
		return nil, nil, fmt.Errorf("price committed quantities: %w", err)
	}

	saleLines := make([]ledger.SaleLine, len(quote.Lines))
	for i, ql := range quote.Lines {
		saleLines[i] = ledger.SaleLine{
			ItemID:    ql.ItemID,
			Units:     ql.Quantity,
			UnitPrice: ql.UnitPrice,
			Total:     ql.Total,
		}
	}

	txs, err := uc.ledger.CommitSale(ctx, orderID, saleLines)
	if err != nil {
		return nil, nil, err
	}
	return quote, txs, nil
}

// commitReorders acts on the decider's recommendations. A reorder failure
// never fails the order; the line just reports why.
func (uc *fulfillmentUseCase) commitReorders(
	ctx context.Context,
	orderID string,
	results []model.FeasibilityResult,
	items map[string]model.Item,
	outcomes []model.LineOutcome,
	lines []model.LineItem,
) []model.Transaction {
	var txs []model.Transaction
	for _, r := range results {
		if !r.ReorderRecommended {
			continue
		}
		item := items[r.ItemID]
		qty := r.ReorderQty
		if qty < item.MinReorderQty {
			qty = item.MinReorderQty
		}

		tx, err := uc.ledger.CommitReorder(ctx, orderID, r.ItemID, qty, item.UnitCost, r.ReorderETA)
		idx := lineIndex(lines, r.ItemID)
		if err != nil {
			reason := "reorder skipped"
			if errors.Is(err, model.ErrInsufficientCash) {
				reason = "reorder skipped: insufficient cash"
			}
			uc.logger.Warn("reorder failed",
				zap.String("order_id", orderID),
				zap.String("item_id", r.ItemID),
				zap.Error(err),
			)
			if idx >= 0 {
				outcomes[idx].Reason = joinReason(outcomes[idx].Reason, reason)
			}
			continue
		}

		txs = append(txs, *tx)
		if idx >= 0 {
			outcomes[idx].Reordered = true
			outcomes[idx].ReorderQty = qty
			outcomes[idx].ReorderETA = r.ReorderETA
		}
	}
	return txs
}

func (uc *fulfillmentUseCase) fillOutcomes(
	outcomes []model.LineOutcome,
	lines []model.LineItem,
	results []model.FeasibilityResult,
	committed map[string]model.QuoteLine,
	saleCommitted bool,
) {
	byItem := make(map[string]model.FeasibilityResult, len(results))
	for _, r := range results {
		byItem[r.ItemID] = r
	}

	for i := range outcomes {
		r, ok := byItem[lines[i].ItemID]
		if !ok {
			continue // line was rejected during validation
		}
		out := &outcomes[i]
		out.Status = r.Status

		if ql, priced := committed[r.ItemID]; priced && saleCommitted {
			out.Committed = ql.Quantity
			out.UnitPrice = ql.UnitPrice
			out.DiscountRate = ql.DiscountRate
			out.LineTotal = ql.Total
		}
		out.Shortfall = out.Requested - out.Committed

		switch {
		case r.Status == model.StatusUnfulfillable:
			out.Reason = joinReason(out.Reason, "out of stock")
		case out.Committed == 0 && r.Fulfillable > 0:
			out.Reason = joinReason(out.Reason, "insufficient stock at commit time")
		case r.Status == model.StatusPartial:
			out.Reason = joinReason(out.Reason, fmt.Sprintf(
				"insufficient inventory: only %d of %d units in stock", r.Fulfillable, r.Requested))
		}
	}
}

func (uc *fulfillmentUseCase) resolveState(
	lines []model.LineItem,
	outcomes []model.LineOutcome,
	saleTxs, reorderTxs []model.Transaction,
) model.OrderState {
	if len(saleTxs) == 0 && len(reorderTxs) == 0 {
		return model.OrderRejected
	}
	for i := range outcomes {
		if outcomes[i].Committed != lines[i].Quantity {
			return model.OrderPartiallyCommitted
		}
	}
	return model.OrderCommitted
}

func (uc *fulfillmentUseCase) reject(ctx context.Context, resp *model.OrderResponse, reason string) (*model.OrderResponse, error) {
	resp.State = model.OrderRejected
	for i := range resp.Lines {
		if resp.Lines[i].Reason == "" {
			resp.Lines[i].Reason = reason
		}
	}
	closing, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	resp.Closing = closing

	uc.logger.Info("order rejected",
		zap.String("order_id", resp.OrderID),
		zap.String("reason", reason),
	)
	return resp, nil
}

func (uc *fulfillmentUseCase) publish(ctx context.Context, txs []model.Transaction) {
	if uc.publisher == nil {
		return
	}
	for _, tx := range txs {
		event := events.TransactionCommitted{
			EventID:     uuid.New().String(),
			EventType:   "TransactionCommitted",
			Transaction: tx,
			Timestamp:   time.Now(),
		}
		if err := uc.publisher.PublishTransaction(ctx, event); err != nil {
			uc.logger.Error("failed to publish transaction event",
				zap.String("transaction_id", tx.ID),
				zap.Error(err),
			)
		}
	}
}

func (uc *fulfillmentUseCase) recordQuote(ctx context.Context, orderID string, quote *model.Quote) {
	if uc.quotes == nil || quote == nil {
		return
	}
	record := &model.QuoteRecord{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		TotalAmount: quote.Total,
		Explanation: explainQuote(quote),
		CreatedAt:   time.Now(),
	}
	if err := uc.quotes.Record(ctx, record); err != nil {
		uc.logger.Error("failed to record quote", zap.String("order_id", orderID), zap.Error(err))
	}
}

// explainQuote renders the human-readable summary stored in quote history.
func explainQuote(q *model.Quote) string {
	var b strings.Builder
	b.WriteString("Your order includes: ")
	for i, line := range q.Lines {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d %s at $%s each", line.Quantity, line.ItemID, line.UnitPrice.StringFixed(2))
		if line.DiscountRate.IsPositive() {
			pct := line.DiscountRate.Mul(decimal.NewFromInt(100))
			fmt.Fprintf(&b, " (with %s%% bulk discount)", pct.StringFixed(0))
		}
	}
	fmt.Fprintf(&b, ". Total cost: $%s", q.Total.StringFixed(2))
	return b.String()
}

func isConstraintErr(err error) bool {
	return errors.Is(err, model.ErrInsufficientStock) || errors.Is(err, model.ErrInsufficientCash)
}

func lineIndex(lines []model.LineItem, itemID string) int {
	for i, l := range lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

func joinReason(existing, extra string) string {
	if existing == "" {
		return extra
	}
	if extra == "" {
		return existing
	}
	return existing + "; " + extra
}
