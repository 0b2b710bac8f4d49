package catalog

import (
	"context"

	"github.com/munderdifflin/fulfillment-service/internal/model"
)

type Repository interface {
	// GetItem returns nil when the item is not in the catalog (caller maps
	// that to an unknown-item rejection).
	GetItem(ctx context.Context, itemID string) (*model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
}
