package board

import (
	"sync"
	"time"

	"restaurant-queue/internal/domain"
)

// Board is the shared dashboard state of one kitchen.
// Each server and cook writes only its own slot; the lock keeps
// multi-field updates and snapshots atomic. It is never held together
// with the queue lock.
type Board struct {
	mu            sync.RWMutex
	servers       []domain.ServerStatus
	cooks         []domain.CookStatus
	totals        domain.Totals
	stopRequested bool
}

func New(servers, cooks int) *Board {
	return &Board{
		servers: make([]domain.ServerStatus, servers),
		cooks:   make([]domain.CookStatus, cooks),
	}
}

// OrderQueued records an order server i has just pushed.
func (b *Board) OrderQueued(i int, o domain.Order, at time.Time) {
	b.mu.Lock()
	s := &b.servers[i]
	s.LastOrderID = o.ID
	s.LastDish = o.Dish
	s.LastWorkMs = o.WorkMs
	s.Timestamp = at
	s.Produced++
	b.totals.Produced++
	b.mu.Unlock()
}

func (b *Board) CookingStarted(i int, o domain.Order, eta time.Time) {
	b.mu.Lock()
	c := &b.cooks[i]
	c.Busy = true
	c.CurrentOrderID = o.ID
	c.CurrentDish = o.Dish
	c.WorkMs = o.WorkMs
	c.EstimatedEnd = eta
	b.mu.Unlock()
}

func (b *Board) CookingFinished(i int) {
	b.mu.Lock()
	b.cooks[i].Busy = false
	b.cooks[i].Completed++
	b.totals.Completed++
	b.mu.Unlock()
}

func (b *Board) CookStopped(i int) {
	b.mu.Lock()
	b.cooks[i].Stopped = true
	b.totals.CooksStopped++
	b.mu.Unlock()
}

func (b *Board) EventDropped() {
	b.mu.Lock()
	b.totals.EventsDropped++
	b.mu.Unlock()
}

func (b *Board) RequestStop() {
	b.mu.Lock()
	b.stopRequested = true
	b.mu.Unlock()
}

func (b *Board) StopRequested() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stopRequested
}

func (b *Board) Totals() domain.Totals {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totals
}

// Snapshot copies the whole board under one read lock.
// Queue length and capacity are left for the caller to fill.
func (b *Board) Snapshot() domain.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := domain.Snapshot{
		Servers:       make([]domain.ServerStatus, len(b.servers)),
		Cooks:         make([]domain.CookStatus, len(b.cooks)),
		Totals:        b.totals,
		StopRequested: b.stopRequested,
		TakenAt:       time.Now(),
	}
	copy(snap.Servers, b.servers)
	copy(snap.Cooks, b.cooks)
	return snap
}
