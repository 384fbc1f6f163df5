package dashboard

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sugawarayuuta/sonnet"

	"restaurant-queue/internal/common/config"
	"restaurant-queue/internal/common/logger"
	"restaurant-queue/internal/domain"
)

type stubSource struct {
	mu    sync.Mutex
	snap  domain.Snapshot
	calls int
	done  chan struct{}
}

func newStub(snap domain.Snapshot) *stubSource {
	return &stubSource{snap: snap, done: make(chan struct{})}
}

func (s *stubSource) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.snap
}

func (s *stubSource) Done() <-chan struct{} { return s.done }

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sampleSnapshot(now time.Time) domain.Snapshot {
	return domain.Snapshot{
		RunID: "r",
		Servers: []domain.ServerStatus{
			{LastOrderID: 7, LastDish: domain.DishSushi, LastWorkMs: 900, Timestamp: now.Add(-150 * time.Millisecond), Produced: 3},
			{},
		},
		Cooks: []domain.CookStatus{
			{Busy: true, CurrentOrderID: 5, CurrentDish: domain.DishPasta, WorkMs: 1000, EstimatedEnd: now.Add(400 * time.Millisecond), Completed: 1},
			{Completed: 2},
			{Completed: 4, Stopped: true},
		},
		Totals:   domain.Totals{Produced: 9, Completed: 7},
		QueueLen: 2,
		Capacity: 5,
	}
}

func TestRenderFrame(t *testing.T) {
	now := time.Now()
	var buf bytes.Buffer
	Render(&buf, sampleSnapshot(now), now)
	out := buf.String()

	if !strings.HasPrefix(out, clearScreen) {
		t.Error("frame does not start by clearing the screen")
	}
	for _, want := range []string{
		"queue=2/5",
		"produced=9",
		"completed=7",
		"STOP=false",
		"Server 1 : +#7 Sushi",
		"total=3 | 150ms ago",
		"Server 2 : (no order yet)",
		"Cook 1 : #5    Pasta   ~400ms left | done=1",
		"Cook 2 : (idle)",
		"Cook 3 : (stopped)",
		"Ctrl+C to stop",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q\n%s", want, out)
		}
	}
}

func TestRenderStopping(t *testing.T) {
	now := time.Now()
	snap := sampleSnapshot(now)
	snap.StopRequested = true
	snap.Totals.EventsDropped = 3

	var buf bytes.Buffer
	Render(&buf, snap, now)
	out := buf.String()
	for _, want := range []string{"STOP=true", "events dropped: 3", "Stopping"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q", want)
		}
	}
}

func TestReporterDrawsUntilDone(t *testing.T) {
	src := newStub(sampleSnapshot(time.Now()))
	var buf bytes.Buffer
	r := NewReporter(src, &buf, 5*time.Millisecond, logger.Discard("test"))

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background()) }()

	time.Sleep(40 * time.Millisecond)
	close(src.done)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop after done")
	}

	if src.Calls() < 3 {
		t.Errorf("expected several frames, got %d", src.Calls())
	}
	out := buf.String()
	if !strings.HasPrefix(out, hideCursor) || !strings.HasSuffix(out, showCursor) {
		t.Error("cursor not hidden then restored")
	}
}

type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type publishCall struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, publishCall{topic, qos, retained, payload.([]byte)})
	return newToken(f.err)
}

func (f *fakePublisher) Calls() []publishCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishCall(nil), f.calls...)
}

func TestBroadcasterPublishesSnapshots(t *testing.T) {
	cfg := config.MQTT{Topic: "kitchen/status", QoS: 1, IntervalMs: 5}
	b := NewBroadcaster(cfg, logger.Discard("test"))
	fp := &fakePublisher{}
	b.pub = fp

	src := newStub(sampleSnapshot(time.Now()))
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(context.Background(), src) }()

	time.Sleep(30 * time.Millisecond)
	close(src.done)
	if err := <-errCh; err != nil {
		t.Fatalf("Run = %v", err)
	}

	calls := fp.Calls()
	if len(calls) < 2 {
		t.Fatalf("expected periodic and final publishes, got %d", len(calls))
	}
	last := calls[len(calls)-1]
	if !last.retained {
		t.Error("final snapshot should be retained")
	}
	if last.topic != "kitchen/status" || last.qos != 1 {
		t.Errorf("published to %s qos %d", last.topic, last.qos)
	}
	var snap domain.Snapshot
	if err := sonnet.Unmarshal(last.payload, &snap); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if snap.QueueLen != 2 || snap.Capacity != 5 {
		t.Errorf("payload snapshot = %+v", snap)
	}

	published, failed := b.Stats()
	if published != uint64(len(calls)) || failed != 0 {
		t.Errorf("stats = %d/%d", published, failed)
	}
}

func TestBroadcasterCountsFailures(t *testing.T) {
	b := NewBroadcaster(config.MQTT{Topic: "t"}, logger.Discard("test"))
	if err := b.Publish(newStub(domain.Snapshot{}), false); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}

	b.pub = &fakePublisher{err: errors.New("broker gone")}
	if err := b.Publish(newStub(domain.Snapshot{}), false); err == nil {
		t.Fatal("expected publish error")
	}
	if _, failed := b.Stats(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

func TestBroadcasterFinalSnapshotWhenCancelledWithDone(t *testing.T) {
	for i := 0; i < 50; i++ {
		b := NewBroadcaster(config.MQTT{Topic: "kitchen/status", IntervalMs: 1000}, logger.Discard("test"))
		fp := &fakePublisher{}
		b.pub = fp

		src := newStub(sampleSnapshot(time.Now()))
		ctx, cancel := context.WithCancel(context.Background())
		close(src.done)
		cancel()
		if err := b.Run(ctx, src); err != nil {
			t.Fatalf("Run = %v", err)
		}

		calls := fp.Calls()
		if len(calls) != 1 || !calls[0].retained {
			t.Fatalf("round %d: want one retained final snapshot, got %+v", i, calls)
		}
	}
}

func TestBroadcasterCancelledEarlyPublishesNothing(t *testing.T) {
	b := NewBroadcaster(config.MQTT{Topic: "t", IntervalMs: 1000}, logger.Discard("test"))
	fp := &fakePublisher{}
	b.pub = fp

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Run(ctx, newStub(domain.Snapshot{})); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if n := len(fp.Calls()); n != 0 {
		t.Fatalf("published %d snapshots for a kitchen still running", n)
	}
}

func TestBroadcasterClientOptions(t *testing.T) {
	b := NewBroadcaster(config.MQTT{Broker: "mq:1883", ClientID: "kitchen-1"}, logger.Discard("test"))
	r := mqtt.NewOptionsReader(b.clientOptions())

	if r.ClientID() != "kitchen-1" {
		t.Errorf("client id = %q", r.ClientID())
	}
	if servers := r.Servers(); len(servers) != 1 || servers[0].String() != "tcp://mq:1883" {
		t.Errorf("servers = %v", servers)
	}
	if !r.AutoReconnect() {
		t.Error("auto reconnect disabled")
	}
	if r.ConnectRetry() {
		t.Error("first connect should fail fast, not retry")
	}
}
