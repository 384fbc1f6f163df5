package service

import (
	"time"

	"restaurant-queue/internal/domain"
)

// runServer writes up orders until a stop is requested. It only ever
// waits on the arrival timer and on a free slot, and both give way to stop.
func (k *Kitchen) runServer(i int, gen Generator) {
	defer k.servers.Done()
	name := serverName(i)

	for {
		if !k.awaitClient(gen.NextArrival()) {
			break
		}
		if err := k.flow.AcquireSlot(k.stopCtx); err != nil {
			break
		}
		if k.stopping() {
			k.flow.ReleaseSlot()
			break
		}

		o := domain.Order{
			ID:     k.nextID.Add(1),
			Dish:   gen.NextDish(),
			WorkMs: int(gen.NextWork() / time.Millisecond),
		}
		k.enqueue(o)
		k.flow.ReleaseItem()

		now := time.Now()
		k.board.OrderQueued(i, o, now)
		k.emit(domain.StatusEvent{
			OrderID:   o.ID,
			Dish:      o.Dish,
			WorkMs:    o.WorkMs,
			NewStatus: domain.StatusReceived,
			ChangedBy: name,
			Timestamp: now,
		})
	}
	k.lg.Debug("server_stopped", map[string]any{"server": name})
}

// awaitClient sleeps d and reports whether the server should keep going.
func (k *Kitchen) awaitClient(d time.Duration) bool {
	if d <= 0 {
		return !k.stopping()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return !k.stopping()
	case <-k.stopCtx.Done():
		return false
	}
}
