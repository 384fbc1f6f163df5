package service

import (
	"context"
	"time"

	"restaurant-queue/internal/domain"
)

// shutdown waits for the stop request, then closes the kitchen in order:
// servers leave, one poison marker per cook goes in behind whatever is
// still queued, cooks drain and leave, pending events are flushed.
func (k *Kitchen) shutdown() {
	<-k.stopCtx.Done()

	k.servers.Wait()
	k.lg.Info("servers_stopped", map[string]any{"queued": k.QueueLen()})

	for i := 0; i < k.cfg.Cooks; i++ {
		k.enqueuePoison()
	}
	k.cooks.Wait()

	close(k.events)
	<-k.dispatched

	k.timesMu.Lock()
	k.finishedAt = time.Now()
	k.timesMu.Unlock()

	s := k.Summary()
	k.lg.Info("kitchen_closed", map[string]any{
		"produced":  s.TotalProduced,
		"completed": s.TotalCompleted,
		"took_ms":   s.FinishedAt.Sub(s.StartedAt).Milliseconds(),
	})
	close(k.done)
}

// enqueuePoison goes through the same permits as a real order so the
// marker lands behind every order already queued. The wait cannot hang:
// cooks keep popping until they meet a marker.
func (k *Kitchen) enqueuePoison() {
	if err := k.flow.AcquireSlot(context.Background()); err != nil {
		return
	}
	k.enqueue(domain.Poison())
	k.flow.ReleaseItem()
}
