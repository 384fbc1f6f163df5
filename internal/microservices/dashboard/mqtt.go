package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sugawarayuuta/sonnet"

	"restaurant-queue/internal/common/config"
	"restaurant-queue/internal/common/logger"
)

var ErrNotConnected = errors.New("mqtt not connected")

// tokenPublisher is the slice of mqtt.Client the broadcaster needs.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Broadcaster publishes kitchen snapshots to an MQTT topic at a fixed
// interval, plus a final retained snapshot once the kitchen is done.
type Broadcaster struct {
	cfg    config.MQTT
	lg     *logger.Logger
	client mqtt.Client
	pub    tokenPublisher

	mu        sync.Mutex
	published uint64
	errors    uint64
}

func NewBroadcaster(cfg config.MQTT, lg *logger.Logger) *Broadcaster {
	return &Broadcaster{cfg: cfg, lg: lg}
}

// clientOptions fails the first connect fast and reconnects after that.
func (b *Broadcaster) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", b.cfg.Broker))
	opts.SetClientID(b.cfg.ClientID)
	opts.SetConnectRetry(false)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		b.lg.Warn("mqtt_connection_lost", err, map[string]any{"broker": b.cfg.Broker})
	}
	return opts
}

func (b *Broadcaster) Connect(ctx context.Context) error {
	b.client = mqtt.NewClient(b.clientOptions())
	token := b.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("mqtt connect %s: timeout", b.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", b.cfg.Broker, err)
	}
	b.pub = b.client
	b.lg.Info("mqtt_connected", map[string]any{"broker": b.cfg.Broker, "topic": b.cfg.Topic})
	return nil
}

func (b *Broadcaster) Disconnect() {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(250)
	}
}

// Publish sends one snapshot.
func (b *Broadcaster) Publish(src SnapshotSource, retained bool) error {
	if b.pub == nil {
		return ErrNotConnected
	}
	payload, err := sonnet.Marshal(src.Snapshot())
	if err != nil {
		b.countError()
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	token := b.pub.Publish(b.cfg.Topic, b.cfg.QoS, retained, payload)
	if !token.WaitTimeout(2 * time.Second) {
		b.countError()
		return fmt.Errorf("publish %s: timeout", b.cfg.Topic)
	}
	if err := token.Error(); err != nil {
		b.countError()
		return fmt.Errorf("publish %s: %w", b.cfg.Topic, err)
	}
	b.mu.Lock()
	b.published++
	b.mu.Unlock()
	return nil
}

// Run publishes every interval until the kitchen is done or ctx ends.
// Publish failures are logged and never stop the loop.
func (b *Broadcaster) Run(ctx context.Context, src SnapshotSource) error {
	every := time.Duration(b.cfg.IntervalMs) * time.Millisecond
	if every <= 0 {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-src.Done():
			b.publishFinal(src)
			return nil
		case <-ctx.Done():
			// ctx is usually cancelled by the same Done that closes src
			select {
			case <-src.Done():
				b.publishFinal(src)
			default:
			}
			return nil
		case <-t.C:
			if err := b.Publish(src, false); err != nil {
				b.lg.Warn("mqtt_publish", err, nil)
			}
		}
	}
}

func (b *Broadcaster) publishFinal(src SnapshotSource) {
	if err := b.Publish(src, true); err != nil {
		b.lg.Warn("mqtt_publish_final", err, nil)
	}
}

func (b *Broadcaster) Stats() (published, failed uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published, b.errors
}

func (b *Broadcaster) countError() {
	b.mu.Lock()
	b.errors++
	b.mu.Unlock()
}
