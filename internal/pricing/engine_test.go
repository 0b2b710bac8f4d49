package pricing

import (
	"errors"
	"testing"

	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func price(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestDiscountRate_Bands(t *testing.T) {
	tests := []struct {
		name string
		qty  int64
		want decimal.Decimal
	}{
		{"no discount below case band", 100, decimal.Zero},
		{"case rate just above band", 101, price(0.02)},
		{"case rate at volume boundary", 1000, price(0.02)},
		{"volume rate just above band", 1001, price(0.04)},
		{"volume rate at bulk boundary", 5000, price(0.04)},
		{"bulk rate just above band", 5001, price(0.12)},
		{"single unit", 1, decimal.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, DiscountRate(tt.qty).Equal(tt.want),
				"qty %d: got %s want %s", tt.qty, DiscountRate(tt.qty), tt.want)
		})
	}
}

func TestQuote_BulkOrder(t *testing.T) {
	engine := NewEngine()
	prices := map[string]decimal.Decimal{"A4 paper": price(0.05)}

	quote, err := engine.Quote([]model.LineItem{{ItemID: "A4 paper", Quantity: 6000}}, prices)
	require.NoError(t, err)
	require.Len(t, quote.Lines, 1)

	line := quote.Lines[0]
	assert.True(t, line.DiscountRate.Equal(price(0.12)))
	assert.True(t, line.Subtotal.Equal(price(300)), "subtotal %s", line.Subtotal)
	assert.True(t, line.Total.Equal(price(264)), "total %s", line.Total)
	assert.True(t, quote.Total.Equal(price(264)))
}

func TestQuote_NoDiscountSmallOrder(t *testing.T) {
	engine := NewEngine()
	prices := map[string]decimal.Decimal{"Cardstock": price(0.15)}

	quote, err := engine.Quote([]model.LineItem{{ItemID: "Cardstock", Quantity: 50}}, prices)
	require.NoError(t, err)
	assert.True(t, quote.Lines[0].DiscountRate.IsZero())
	assert.True(t, quote.Total.Equal(price(7.5)))
}

func TestQuote_SumsLineDiscounts(t *testing.T) {
	engine := NewEngine()
	prices := map[string]decimal.Decimal{
		"A4 paper":  price(0.05),
		"Cardstock": price(0.15),
	}

	// Two lines below the case band individually must get no discount even
	// though together they exceed it: no cross-line bundling.
	quote, err := engine.Quote([]model.LineItem{
		{ItemID: "A4 paper", Quantity: 80},
		{ItemID: "Cardstock", Quantity: 80},
	}, prices)
	require.NoError(t, err)
	assert.True(t, quote.Discount.IsZero())
	assert.True(t, quote.Total.Equal(quote.Subtotal))
}

func TestQuote_UnknownItem(t *testing.T) {
	engine := NewEngine()
	_, err := engine.Quote([]model.LineItem{{ItemID: "Vellum", Quantity: 10}}, map[string]decimal.Decimal{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownItem))
}

func TestQuote_InvalidQuantity(t *testing.T) {
	engine := NewEngine()
	prices := map[string]decimal.Decimal{"A4 paper": price(0.05)}

	for _, qty := range []int64{0, -5} {
		_, err := engine.Quote([]model.LineItem{{ItemID: "A4 paper", Quantity: qty}}, prices)
		require.Error(t, err, "qty %d", qty)
		assert.True(t, errors.Is(err, model.ErrInvalidQuantity))
	}
}

func TestProperty_PricingMonotonicity(t *testing.T) {
	engine := NewEngine()
	unitPrice := price(0.05)
	prices := map[string]decimal.Decimal{"A4 paper": unitPrice}

	rapid.Check(t, func(t *rapid.T) {
		q1 := rapid.Int64Range(1, 20000).Draw(t, "q1")
		q2 := rapid.Int64Range(1, 20000).Draw(t, "q2")
		if q1 > q2 {
			q1, q2 = q2, q1
		}

		// Discount rate never decreases with quantity.
		if DiscountRate(q1).GreaterThan(DiscountRate(q2)) {
			t.Fatalf("discount rate decreased: qty %d -> %s, qty %d -> %s",
				q1, DiscountRate(q1), q2, DiscountRate(q2))
		}

		// Total cost never decreases with quantity within a discount
		// band. Across band edges a larger order can legitimately cost
		// less; that is the point of bulk pricing.
		if !DiscountRate(q1).Equal(DiscountRate(q2)) {
			return
		}
		quote1, err := engine.Quote([]model.LineItem{{ItemID: "A4 paper", Quantity: q1}}, prices)
		if err != nil {
			t.Fatalf("quote q1: %v", err)
		}
		quote2, err := engine.Quote([]model.LineItem{{ItemID: "A4 paper", Quantity: q2}}, prices)
		if err != nil {
			t.Fatalf("quote q2: %v", err)
		}
		if quote1.Total.GreaterThan(quote2.Total) {
			t.Fatalf("total decreased: qty %d -> %s, qty %d -> %s",
				q1, quote1.Total, q2, quote2.Total)
		}
	})
}
