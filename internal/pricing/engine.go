// Package pricing computes quotes against catalog prices with per-line
// quantity-band discounts. The engine is a pure function of its inputs and
// never touches ledger state.
package pricing

import (
	"fmt"

	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
)

// Discount bands, strictly-greater boundaries: a quantity sitting exactly on
// a boundary belongs to the band below it. The per-band rates are fixed
// points inside the ranges the business quotes ("10-15%", "3-5%").
var (
	bulkRate   = decimal.NewFromFloat(0.12) // qty > 5000
	volumeRate = decimal.NewFromFloat(0.04) // qty > 1000
	caseRate   = decimal.NewFromFloat(0.02) // qty > 100
)

const (
	bulkBand   = 5000
	volumeBand = 1000
	caseBand   = 100
)

// DiscountRate returns the band rate for a line quantity.
func DiscountRate(quantity int64) decimal.Decimal {
	switch {
	case quantity > bulkBand:
		return bulkRate
	case quantity > volumeBand:
		return volumeRate
	case quantity > caseBand:
		return caseRate
	default:
		return decimal.Zero
	}
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Quote prices the given lines against the supplied unit prices. No
// cross-line bundling: the order discount is the sum of line discounts.
func (e *Engine) Quote(lines []model.LineItem, prices map[string]decimal.Decimal) (*model.Quote, error) {
	quote := &model.Quote{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("item %q: %w", line.ItemID, model.ErrInvalidQuantity)
		}
		unitPrice, ok := prices[line.ItemID]
		if !ok {
			return nil, fmt.Errorf("item %q: %w", line.ItemID, model.ErrUnknownItem)
		}

		rate := DiscountRate(line.Quantity)
		subtotal := unitPrice.Mul(decimal.NewFromInt(line.Quantity))
		discount := subtotal.Mul(rate)
		total := subtotal.Sub(discount)

		quote.Lines = append(quote.Lines, model.QuoteLine{
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			UnitPrice:    unitPrice,
			DiscountRate: rate,
			Discount:     discount,
			Subtotal:     subtotal,
			Total:        total,
		})
		quote.Subtotal = quote.Subtotal.Add(subtotal)
		quote.Discount = quote.Discount.Add(discount)
		quote.Total = quote.Total.Add(total)
	}

	return quote, nil
}
