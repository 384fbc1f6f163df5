package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/sugawarayuuta/sonnet"

	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/connections/rabbitmq"
	"restaurant-queue/internal/domain"
)

type fakeBroker struct {
	mu         sync.Mutex
	published  []amqp091.Publishing
	exchanges  []string
	deliveries chan amqp091.Delivery
	cancelled  bool
	err        error
}

func (b *fakeBroker) Publish(_ context.Context, exchange, _ string, msg amqp091.Publishing) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.exchanges = append(b.exchanges, exchange)
	b.published = append(b.published, msg)
	return nil
}

func (b *fakeBroker) Consume(string, string, int) (<-chan amqp091.Delivery, error) {
	return b.deliveries, nil
}

func (b *fakeBroker) Cancel(string) error {
	b.mu.Lock()
	b.cancelled = true
	b.mu.Unlock()
	return nil
}

type acks struct {
	mu     sync.Mutex
	acked  int
	nacked int
}

func (a *acks) Ack(uint64, bool) error {
	a.mu.Lock()
	a.acked++
	a.mu.Unlock()
	return nil
}

func (a *acks) Nack(uint64, bool, bool) error {
	a.mu.Lock()
	a.nacked++
	a.mu.Unlock()
	return nil
}

func (a *acks) Reject(uint64, bool) error { return nil }

func TestPublisherSendsEventToFanout(t *testing.T) {
	b := &fakeBroker{}
	ev := domain.StatusEvent{
		RunID: "run", OrderID: 42, Dish: domain.DishBurger, WorkMs: 900,
		OldStatus: domain.StatusCooking, NewStatus: domain.StatusReady,
		ChangedBy: "cook-1", Timestamp: time.Now(),
	}
	if err := NewPublisher(b).Handle(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if len(b.published) != 1 || b.exchanges[0] != rabbitmq.NotificationsExchange {
		t.Fatalf("published %d messages to %v", len(b.published), b.exchanges)
	}
	msg := b.published[0]
	if msg.CorrelationId != "42" || msg.Headers["x-worker"] != "cook-1" || msg.MessageId == "" {
		t.Errorf("publishing = %+v", msg)
	}

	var got domain.StatusEvent
	if err := sonnet.Unmarshal(msg.Body, &got); err != nil {
		t.Fatal(err)
	}
	if got.OrderID != 42 || got.Dish != domain.DishBurger || got.NewStatus != domain.StatusReady {
		t.Errorf("decoded = %+v", got)
	}
}

func TestPublisherReturnsBrokerError(t *testing.T) {
	b := &fakeBroker{err: errors.New("nack")}
	if err := NewPublisher(b).Handle(context.Background(), domain.StatusEvent{OrderID: 1}); err == nil {
		t.Fatal("expected the broker error")
	}
}

func TestNotifyAcksGoodAndDropsMalformed(t *testing.T) {
	a := &acks{}
	b := &fakeBroker{deliveries: make(chan amqp091.Delivery, 2)}

	body, _ := sonnet.Marshal(domain.StatusEvent{OrderID: 7, NewStatus: domain.StatusCooking})
	b.deliveries <- amqp091.Delivery{Acknowledger: a, Body: body}
	b.deliveries <- amqp091.Delivery{Acknowledger: a, Body: []byte("{not json")}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewNotificatorService(b, logger.Discard("notificator")).Notify(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		a.mu.Lock()
		done := a.acked == 1 && a.nacked == 1
		a.mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("deliveries were not settled")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatal(err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.cancelled {
		t.Error("consumer not cancelled on shutdown")
	}
}
