package kafka

import (
	"context"
	"encoding/json"

	"github.com/munderdifflin/fulfillment-service/internal/events"
	"github.com/munderdifflin/fulfillment-service/pkg/broker"
)

type Publisher struct {
	publisher *broker.KafkaPublisher
}

func NewPublisher(publisher *broker.KafkaPublisher) *Publisher {
	return &Publisher{publisher: publisher}
}

func (p *Publisher) PublishTransaction(ctx context.Context, event events.TransactionCommitted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.publisher.Write(ctx, []byte(event.Transaction.ItemID), data)
}

var _ events.Publisher = (*Publisher)(nil)
