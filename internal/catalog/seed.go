package catalog

import (
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/shopspring/decimal"
)

// defaultMinReorderQty is the supplier's smallest accepted order.
const defaultMinReorderQty = 500

// costRatio values inventory at 70% of list price.
var costRatio = decimal.NewFromFloat(0.70)

func seedItem(name, category string, price float64) model.Item {
	unitPrice := decimal.NewFromFloat(price)
	return model.Item{
		ItemID:        name,
		Category:      category,
		UnitPrice:     unitPrice,
		UnitCost:      unitPrice.Mul(costRatio).Round(4),
		MinReorderQty: defaultMinReorderQty,
	}
}

// SeedItems is the built-in paper catalog, priced per sheet unless the name
// says otherwise. Used to seed fresh databases and the in-memory stores.
func SeedItems() []model.Item {
	return []model.Item{
		seedItem("A4 paper", "paper", 0.05),
		seedItem("Letter-sized paper", "paper", 0.06),
		seedItem("Cardstock", "paper", 0.15),
		seedItem("Colored paper", "paper", 0.10),
		seedItem("Glossy paper", "paper", 0.20),
		seedItem("Matte paper", "paper", 0.18),
		seedItem("Recycled paper", "paper", 0.08),
		seedItem("Eco-friendly paper", "paper", 0.12),
		seedItem("Poster paper", "paper", 0.25),
		seedItem("Banner paper", "paper", 0.30),
		seedItem("Kraft paper", "paper", 0.10),
		seedItem("Construction paper", "paper", 0.07),
		seedItem("Wrapping paper", "paper", 0.15),
		seedItem("Glitter paper", "specialty", 0.22),
		seedItem("Card stock sheets", "specialty", 0.18),
		seedItem("Envelopes", "office", 0.05),
		seedItem("Sticky notes", "office", 0.03),
		seedItem("Notepads", "office", 1.25),
		seedItem("Printer paper ream", "office", 4.50),
		seedItem("Paper plates", "party", 0.10),
	}
}
