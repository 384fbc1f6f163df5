package queue

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// FlowControl is the two-permit gate in front of a Ring.
//
//	server: AcquireSlot -> push -> ReleaseItem
//	cook:   AcquireItem -> pop  -> ReleaseSlot
//
// Every pair moves exactly one unit between the two counters, so
// FreeSlots()+Items() equals the capacity whenever no call is in flight.
// Waits observe their context; a cancelled wait never consumes a permit.
type FlowControl struct {
	capacity  int64
	freeSlots *semaphore.Weighted
	items     *semaphore.Weighted

	free  atomic.Int64
	ready atomic.Int64
}

func NewFlowControl(capacity int) (*FlowControl, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	n := int64(capacity)
	fc := &FlowControl{
		capacity:  n,
		freeSlots: semaphore.NewWeighted(n),
		items:     semaphore.NewWeighted(n),
	}
	// items starts empty: hold its whole weight and hand units back on ReleaseItem.
	if !fc.items.TryAcquire(n) {
		return nil, fmt.Errorf("drain item permits: %w", ErrInvalidCapacity)
	}
	fc.free.Store(n)
	return fc, nil
}

func (fc *FlowControl) AcquireSlot(ctx context.Context) error {
	if err := fc.freeSlots.Acquire(ctx, 1); err != nil {
		return err
	}
	fc.free.Add(-1)
	return nil
}

func (fc *FlowControl) ReleaseSlot() {
	fc.free.Add(1)
	fc.freeSlots.Release(1)
}

func (fc *FlowControl) AcquireItem(ctx context.Context) error {
	if err := fc.items.Acquire(ctx, 1); err != nil {
		return err
	}
	fc.ready.Add(-1)
	return nil
}

func (fc *FlowControl) ReleaseItem() {
	fc.ready.Add(1)
	fc.items.Release(1)
}

func (fc *FlowControl) FreeSlots() int64 { return fc.free.Load() }
func (fc *FlowControl) Items() int64     { return fc.ready.Load() }
func (fc *FlowControl) Capacity() int64  { return fc.capacity }
