package quotes

import (
	"context"

	"github.com/munderdifflin/fulfillment-service/internal/model"
)

type Repository interface {
	Save(ctx context.Context, record *model.QuoteRecord) error
	// Search matches terms against quote explanations, most recent first.
	Search(ctx context.Context, terms []string, limit int) ([]model.QuoteRecord, error)
}
