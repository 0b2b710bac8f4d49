package fulfillment

import (
	"context"

	"github.com/munderdifflin/fulfillment-service/internal/model"
)

// UseCase is the order orchestrator: snapshot, feasibility, pricing, commit,
// reorder, response. The result encodes every per-line outcome; a non-nil
// error means a storage-layer fault where nothing was written and the caller
// may safely retry the whole order.
type UseCase interface {
	ProcessOrder(ctx context.Context, lines []model.LineItem) (*model.OrderResponse, error)
}
