package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/sugawarayuuta/sonnet"

	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/connections/rabbitmq"
	"restaurant-queue/internal/domain"
)

// Broker is the part of the RabbitMQ client the notificator needs.
type Broker interface {
	Publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) error
	Consume(queue, consumer string, prefetch int) (<-chan amqp091.Delivery, error)
	Cancel(consumer string) error
}

// Publisher forwards kitchen status events to the notifications exchange.
type Publisher struct {
	broker Broker
}

func NewPublisher(b Broker) *Publisher { return &Publisher{broker: b} }

func (p *Publisher) Handle(ctx context.Context, ev domain.StatusEvent) error {
	body, err := sonnet.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	return p.broker.Publish(ctx, rabbitmq.NotificationsExchange, "", amqp091.Publishing{
		DeliveryMode:  amqp091.Persistent,
		ContentType:   "application/json",
		MessageId:     uuid.NewString(),
		CorrelationId: strconv.FormatInt(ev.OrderID, 10),
		Timestamp:     ev.Timestamp.UTC(),
		Headers: amqp091.Table{
			"x-source": "kitchen",
			"x-worker": ev.ChangedBy,
			"x-run":    ev.RunID,
		},
		Body: body,
	})
}

type NotificatorService struct {
	broker Broker
	lg     *logger.Logger
}

func NewNotificatorService(b Broker, lg *logger.Logger) *NotificatorService {
	return &NotificatorService{broker: b, lg: lg}
}

// Notify logs every status event from the notifications queue until ctx ends.
func (ns *NotificatorService) Notify(ctx context.Context) error {
	const consumer = "notificator"
	msgs, err := ns.broker.Consume(rabbitmq.NotificationsQueue, consumer, 10)
	if err != nil {
		return fmt.Errorf("consume %s: %w", rabbitmq.NotificationsQueue, err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = ns.broker.Cancel(consumer)
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			ns.handle(d)
		}
	}
}

func (ns *NotificatorService) handle(d amqp091.Delivery) {
	var ev domain.StatusEvent
	if err := sonnet.Unmarshal(d.Body, &ev); err != nil {
		ns.lg.Error("notification_malformed", err, map[string]any{"message_id": d.MessageId})
		_ = d.Nack(false, false)
		return
	}
	ns.lg.Info("notification_received", map[string]any{
		"run_id":     ev.RunID,
		"order_id":   ev.OrderID,
		"dish":       ev.Dish.String(),
		"old_status": ev.OldStatus,
		"new_status": ev.NewStatus,
		"changed_by": ev.ChangedBy,
	})
	_ = d.Ack(false)
}
