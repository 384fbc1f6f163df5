package queue

import (
	"errors"

	"restaurant-queue/internal/domain"
)

var (
	ErrQueueFull       = errors.New("queue is full")
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrInvalidCapacity = errors.New("queue capacity must be positive")
)

// Ring is a fixed-capacity FIFO of orders.
// It is not safe for concurrent use: callers hold their own lock and
// have already taken the flow-control permit matching the operation.
type Ring struct {
	buf   []domain.Order
	head  int
	tail  int
	count int
}

func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Ring{buf: make([]domain.Order, capacity)}, nil
}

func (r *Ring) Push(o domain.Order) error {
	if r.count >= len(r.buf) {
		return ErrQueueFull
	}
	r.buf[r.tail] = o
	r.tail = (r.tail + 1) % len(r.buf)
	r.count++
	return nil
}

func (r *Ring) Pop() (domain.Order, error) {
	if r.count == 0 {
		return domain.Order{}, ErrQueueEmpty
	}
	o := r.buf[r.head]
	r.buf[r.head] = domain.Order{}
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return o, nil
}

func (r *Ring) Len() int { return r.count }
func (r *Ring) Cap() int { return len(r.buf) }
