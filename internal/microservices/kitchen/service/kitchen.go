package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/domain"
	"restaurant-queue/internal/microservices/kitchen/board"
	"restaurant-queue/internal/microservices/kitchen/queue"
)

var ErrAlreadyStarted = errors.New("kitchen already started")

type KitchenServiceInterface interface {
	Start(ctx context.Context) error
	Run(ctx context.Context) error
	Stop()
	Join()
	Done() <-chan struct{}
	Summary() domain.Summary
	Snapshot() domain.Snapshot
	QueueLen() int
	Capacity() int
}

// Kitchen runs servers (producers) and cooks (consumers) around one
// bounded order queue. All shared state hangs off this value.
type Kitchen struct {
	cfg   Config
	runID string
	lg    *logger.Logger
	sinks []EventSink

	mu   sync.Mutex // guards ring only
	ring *queue.Ring
	flow *queue.FlowControl

	board  *board.Board
	nextID atomic.Int64

	stopCtx  context.Context
	stop     context.CancelFunc
	stopOnce sync.Once
	started  atomic.Bool

	servers    sync.WaitGroup
	cooks      sync.WaitGroup
	events     chan domain.StatusEvent
	dispatched chan struct{}
	done       chan struct{}

	timesMu    sync.Mutex
	startedAt  time.Time
	finishedAt time.Time
}

// NewKitchenService allocates the queue and permits. Nothing runs until Start.
func NewKitchenService(cfg Config, lg *logger.Logger, sinks ...EventSink) (KitchenServiceInterface, error) {
	return newKitchen(cfg, lg, sinks...)
}

func newKitchen(cfg Config, lg *logger.Logger, sinks ...EventSink) (*Kitchen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(sinks) > 0 && cfg.EventBuffer == 0 {
		// emit never blocks, so an unbuffered channel would drop nearly every event
		return nil, fmt.Errorf("%w: event sinks need a positive event buffer", ErrInvalidConfig)
	}
	ring, err := queue.NewRing(cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("allocate order queue: %w", err)
	}
	flow, err := queue.NewFlowControl(cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("init permits: %w", err)
	}
	if lg == nil {
		lg = logger.New("kitchen")
	}
	if cfg.NewGenerator == nil {
		seed := uint64(time.Now().UnixNano())
		cfg.NewGenerator = func(i int) Generator { return newRandGenerator(cfg, seed, i) }
	}

	runID := uuid.NewString()
	stopCtx, stop := context.WithCancel(context.Background())
	return &Kitchen{
		cfg:        cfg,
		runID:      runID,
		lg:         lg.With(map[string]any{"run_id": runID}),
		sinks:      sinks,
		ring:       ring,
		flow:       flow,
		board:      board.New(cfg.Servers, cfg.Cooks),
		stopCtx:    stopCtx,
		stop:       stop,
		events:     make(chan domain.StatusEvent, cfg.EventBuffer),
		dispatched: make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

// Start launches every goroutine. Cancelling ctx requests a stop.
func (k *Kitchen) Start(ctx context.Context) error {
	if !k.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	k.timesMu.Lock()
	k.startedAt = time.Now()
	k.timesMu.Unlock()

	k.lg.Info("kitchen_started", map[string]any{
		"servers": k.cfg.Servers, "cooks": k.cfg.Cooks, "capacity": k.cfg.Capacity,
	})

	go func() {
		select {
		case <-ctx.Done():
			k.Stop()
		case <-k.stopCtx.Done():
		}
	}()

	// Cooks outlive the stop request: they drain what is queued and
	// leave only when they pop their poison marker.
	cookCtx := context.WithoutCancel(ctx)
	go k.dispatch(cookCtx)

	for i := 0; i < k.cfg.Servers; i++ {
		k.servers.Add(1)
		go k.runServer(i, k.cfg.NewGenerator(i))
	}
	for i := 0; i < k.cfg.Cooks; i++ {
		k.cooks.Add(1)
		go k.runCook(cookCtx, i)
	}
	go k.shutdown()
	return nil
}

// Run starts the kitchen and blocks until it has shut down.
func (k *Kitchen) Run(ctx context.Context) error {
	if err := k.Start(ctx); err != nil {
		return err
	}
	k.Join()
	return nil
}

// Stop requests a shutdown. Safe to call any number of times from any goroutine.
func (k *Kitchen) Stop() {
	k.stopOnce.Do(func() {
		k.board.RequestStop()
		k.stop()
		k.lg.Info("stop_requested", nil)
	})
}

func (k *Kitchen) stopping() bool { return k.stopCtx.Err() != nil }

// Join blocks until a started kitchen has drained and released everything.
func (k *Kitchen) Join() { <-k.done }

func (k *Kitchen) Done() <-chan struct{} { return k.done }

func (k *Kitchen) QueueLen() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ring.Len()
}

func (k *Kitchen) Capacity() int { return k.cfg.Capacity }

func (k *Kitchen) Snapshot() domain.Snapshot {
	n := k.QueueLen()
	snap := k.board.Snapshot()
	snap.RunID = k.runID
	snap.QueueLen = n
	snap.Capacity = k.cfg.Capacity
	return snap
}

func (k *Kitchen) Summary() domain.Summary {
	t := k.board.Totals()
	k.timesMu.Lock()
	defer k.timesMu.Unlock()
	return domain.Summary{
		RunID:          k.runID,
		TotalProduced:  t.Produced,
		TotalCompleted: t.Completed,
		Capacity:       k.cfg.Capacity,
		Servers:        k.cfg.Servers,
		Cooks:          k.cfg.Cooks,
		StartedAt:      k.startedAt,
		FinishedAt:     k.finishedAt,
	}
}

func (k *Kitchen) enqueue(o domain.Order) {
	k.mu.Lock()
	err := k.ring.Push(o)
	k.mu.Unlock()
	if err != nil {
		panic(fmt.Sprintf("kitchen: push order %d while holding a free slot: %v", o.ID, err))
	}
}

func (k *Kitchen) dequeue() domain.Order {
	k.mu.Lock()
	o, err := k.ring.Pop()
	k.mu.Unlock()
	if err != nil {
		panic(fmt.Sprintf("kitchen: pop while holding an item permit: %v", err))
	}
	return o
}

func serverName(i int) string { return fmt.Sprintf("server-%d", i+1) }
func cookName(i int) string   { return fmt.Sprintf("cook-%d", i+1) }
