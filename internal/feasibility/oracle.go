package feasibility

import "time"

// SupplierOracle estimates when a supplier order placed on a given date
// would arrive. It is a data computation, never a blocking call.
type SupplierOracle interface {
	DeliveryDate(itemID string, quantity int64, from time.Time) time.Time
}

// LeadTimeOracle implements the supplier's published lead-time bands:
// small orders ship same day, anything above a thousand units takes a week.
type LeadTimeOracle struct{}

func NewLeadTimeOracle() *LeadTimeOracle {
	return &LeadTimeOracle{}
}

func (o *LeadTimeOracle) DeliveryDate(_ string, quantity int64, from time.Time) time.Time {
	var days int
	switch {
	case quantity <= 10:
		days = 0
	case quantity <= 100:
		days = 1
	case quantity <= 1000:
		days = 4
	default:
		days = 7
	}
	return from.AddDate(0, 0, days)
}
