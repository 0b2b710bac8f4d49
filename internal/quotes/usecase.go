package quotes

import (
	"context"

	"github.com/munderdifflin/fulfillment-service/internal/model"
)

type UseCase interface {
	Record(ctx context.Context, record *model.QuoteRecord) error
	Search(ctx context.Context, terms []string, limit int) ([]model.QuoteRecord, error)
}
