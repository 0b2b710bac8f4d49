package events

import (
	"context"
	"time"

	"github.com/munderdifflin/fulfillment-service/internal/model"
)

// Publisher emits domain events after commits. Implementations must be safe
// for concurrent use; publish failures are logged, never propagated into the
// order outcome.
type Publisher interface {
	PublishTransaction(ctx context.Context, event TransactionCommitted) error
}

// TransactionCommitted is emitted once per committed ledger transaction.
type TransactionCommitted struct {
	EventID     string            `json:"event_id"`
	EventType   string            `json:"event_type"`
	Transaction model.Transaction `json:"transaction"`
	Timestamp   time.Time         `json:"timestamp"`
}
