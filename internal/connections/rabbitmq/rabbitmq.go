package rabbitmq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-queue/internal/common/config"
)

const (
	NotificationsExchange = "notifications_fanout"
	NotificationsQueue    = "notifications.q"
)

var (
	ErrNack          = errors.New("publish NACK from broker")
	ErrNotConfirming = errors.New("channel is not in confirm mode")
)

// confirmation is the broker's pending answer for exactly one message.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)

type Client struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	publish publishFunc
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// URL renders the broker address for cfg, password included.
func URL(cfg config.MQ) string {
	vhost := cfg.VHost
	if vhost == "" || vhost == "/" {
		vhost = ""
	}
	scheme := "amqp"
	if cfg.UseTLS {
		scheme = "amqps"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s", scheme, cfg.User, cfg.Pass, cfg.Host, cfg.Port, vhost)
}

func Dial(cfg config.MQ) (*Client, error) {
	url := URL(cfg)

	var (
		conn *amqp.Connection
		err  error
	)
	if cfg.UseTLS {
		conn, err = amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(url)
	}
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	c := &Client{conn: conn, ch: ch}
	c.publish = c.publishDeferred
	return c, nil
}

func (c *Client) publishDeferred(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, ErrNotConfirming
	}
	return dc, nil
}

// DeclareNotifications declares the fanout exchange status events go to
// and, when bind is set, the durable queue subscribers read from.
func (c *Client) DeclareNotifications(bind bool) error {
	if err := c.ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", NotificationsExchange, err)
	}
	if !bind {
		return nil
	}
	if _, err := c.ch.QueueDeclare(NotificationsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", NotificationsQueue, err)
	}
	if err := c.ch.QueueBind(NotificationsQueue, "", NotificationsExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", NotificationsQueue, err)
	}
	return nil
}

// Publish sends one message and waits for the broker's ack or nack of
// that message. A confirm that arrives after ctx ends settles only its own
// message, never a later Publish.
func (c *Client) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	conf, err := c.publish(ctx, exchange, key, msg)
	if err != nil {
		return err
	}
	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm: %w", err)
	}
	if !ack {
		return ErrNack
	}
	return nil
}

func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}

func (c *Client) Cancel(consumer string) error { return c.ch.Cancel(consumer, false) }
