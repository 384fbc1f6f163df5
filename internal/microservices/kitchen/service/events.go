package service

import (
	"context"
	"time"

	"restaurant-queue/internal/domain"
)

const sinkTimeout = 5 * time.Second

// EventSink receives order lifecycle transitions off the kitchen's hot path.
type EventSink interface {
	Handle(ctx context.Context, ev domain.StatusEvent) error
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, ev domain.StatusEvent) error

func (f EventSinkFunc) Handle(ctx context.Context, ev domain.StatusEvent) error { return f(ctx, ev) }

// emit never blocks a server or cook: when the buffer is full the event is counted and dropped.
func (k *Kitchen) emit(ev domain.StatusEvent) {
	if len(k.sinks) == 0 {
		return
	}
	ev.RunID = k.runID
	select {
	case k.events <- ev:
	default:
		k.board.EventDropped()
	}
}

func (k *Kitchen) dispatch(ctx context.Context) {
	defer close(k.dispatched)
	for ev := range k.events {
		for _, s := range k.sinks {
			cctx, cancel := context.WithTimeout(ctx, sinkTimeout)
			err := s.Handle(cctx, ev)
			cancel()
			if err != nil {
				k.lg.Warn("event_sink_failed", err, map[string]any{
					"order_id": ev.OrderID, "status": ev.NewStatus,
				})
			}
		}
	}
}
