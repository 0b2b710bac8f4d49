package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/munderdifflin/fulfillment-service/internal/fulfillment"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/munderdifflin/fulfillment-service/pkg/broker"
	"github.com/munderdifflin/fulfillment-service/pkg/logger"
	"go.uber.org/zap"
)

// OrderListener consumes parsed order requests from Kafka. This is the
// ingress for the external request-parsing component.
type OrderListener struct {
	consumer *broker.KafkaConsumer
	uc       fulfillment.UseCase
	logger   logger.ZapLogger
}

func NewOrderListener(consumer *broker.KafkaConsumer, uc fulfillment.UseCase, logger logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting Order Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Order Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderRequestedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	RequestID string           `json:"request_id"`
	Lines     []model.LineItem `json:"lines"`
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event OrderRequestedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "OrderRequested" {
		return
	}

	l.logger.Info("Processing OrderRequested event", zap.String("request_id", event.Payload.RequestID))

	resp, err := l.uc.ProcessOrder(ctx, event.Payload.Lines)
	if err != nil {
		l.logger.Error("Failed to process order request",
			zap.String("request_id", event.Payload.RequestID),
			zap.Error(err),
		)
		// TODO: publish a failure event so the requester can retry
		return
	}

	l.logger.Info("Order request processed",
		zap.String("request_id", event.Payload.RequestID),
		zap.String("order_id", resp.OrderID),
		zap.String("state", string(resp.State)),
	)
}
