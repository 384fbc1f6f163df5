package service

import (
	"context"
	"time"

	"restaurant-queue/internal/domain"
)

// runCook prepares orders in queue order until it pops a poison marker.
// A started order is always finished, stop or not.
func (k *Kitchen) runCook(ctx context.Context, i int) {
	defer k.cooks.Done()
	defer k.board.CookStopped(i)
	name := cookName(i)

	for {
		if err := k.flow.AcquireItem(ctx); err != nil {
			k.lg.Warn("cook_wait_aborted", err, map[string]any{"cook": name})
			return
		}
		o := k.dequeue()
		// The slot goes back before anything else, poison included.
		k.flow.ReleaseSlot()

		if o.IsPoison() {
			k.lg.Debug("cook_stopped", map[string]any{"cook": name})
			return
		}

		start := time.Now()
		eta := start.Add(o.WorkDuration())
		k.board.CookingStarted(i, o, eta)
		k.emit(domain.StatusEvent{
			OrderID:             o.ID,
			Dish:                o.Dish,
			WorkMs:              o.WorkMs,
			OldStatus:           domain.StatusReceived,
			NewStatus:           domain.StatusCooking,
			ChangedBy:           name,
			Timestamp:           start,
			EstimatedCompletion: eta,
		})

		time.Sleep(o.WorkDuration())

		done := time.Now()
		k.board.CookingFinished(i)
		k.emit(domain.StatusEvent{
			OrderID:   o.ID,
			Dish:      o.Dish,
			WorkMs:    o.WorkMs,
			OldStatus: domain.StatusCooking,
			NewStatus: domain.StatusReady,
			ChangedBy: name,
			Timestamp: done,
		})
	}
}
