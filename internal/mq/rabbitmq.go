package mq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeEvents = "share.events.exchange"
	ExchangeRetry  = "share.events.retry.exchange"
	ExchangeDLQ    = "share.events.dlq.exchange"

	QueueEvents = "share.events.queue"
	QueueRetry  = "share.events.retry.queue"
	QueueDLQ    = "share.events.dlq.queue"

	RoutingEvent = "share.event"
	RoutingRetry = "share.event.retry"
	RoutingDLQ   = "share.event.dlq"
)

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// DeclareTopology declares the event, retry and dead-letter wiring. Retry
// messages dead-letter back into the main event exchange after expiring.
func (c *Client) DeclareTopology() error {
	exchanges := []string{ExchangeEvents, ExchangeRetry, ExchangeDLQ}
	for _, exchange := range exchanges {
		if err := c.Channel.ExchangeDeclare(
			exchange,
			"direct",
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return err
		}
	}

	if _, err := c.Channel.QueueDeclare(
		QueueEvents,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		QueueRetry,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    ExchangeEvents,
			"x-dead-letter-routing-key": RoutingEvent,
		},
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		QueueDLQ,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}

	if err := c.Channel.QueueBind(QueueEvents, RoutingEvent, ExchangeEvents, false, nil); err != nil {
		return err
	}
	if err := c.Channel.QueueBind(QueueRetry, RoutingRetry, ExchangeRetry, false, nil); err != nil {
		return err
	}
	return c.Channel.QueueBind(QueueDLQ, RoutingDLQ, ExchangeDLQ, false, nil)
}

func (c *Client) PublishEvent(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeEvents, RoutingEvent, body, "")
}

func (c *Client) PublishRetry(ctx context.Context, body []byte, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	expiration := fmt.Sprintf("%d", delay.Milliseconds())
	return c.publish(ctx, ExchangeRetry, RoutingRetry, body, expiration)
}

func (c *Client) PublishDLQ(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeDLQ, RoutingDLQ, body, "")
}

func (c *Client) publish(ctx context.Context, exchange, key string, body []byte, expiration string) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	if expiration != "" {
		msg.Expiration = expiration
	}
	return c.Channel.PublishWithContext(
		ctx,
		exchange,
		key,
		false,
		false,
		msg,
	)
}
