package event

import (
	"GoDrop/internal/mq"
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DownloadEvent is the payload published for every served redemption and
// for link exhaustion.
type DownloadEvent struct {
	ShareID    string    `json:"share_id"`
	ShareCode  string    `json:"share_code"`
	FileID     string    `json:"file_id"`
	FileName   string    `json:"file_name"`
	Event      string    `json:"event"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Attempt    int       `json:"attempt"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher lazily maintains a shared AMQP client for event publishing.
type Publisher struct {
	url string

	mu     sync.Mutex
	client *mq.Client
}

// NewPublisher creates a publisher for the given broker URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

func (p *Publisher) get() (*mq.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		if !p.client.Conn.IsClosed() && !p.client.Channel.IsClosed() {
			return p.client, nil
		}
		p.client.Close()
		p.client = nil
	}
	client, err := mq.Dial(p.url)
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	p.client = client
	return p.client, nil
}

// Publish sends a download event to the broker.
func (p *Publisher) Publish(ctx context.Context, ev DownloadEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	client, err := p.get()
	if err != nil {
		return err
	}
	return client.PublishEvent(ctx, body)
}

// Close releases the underlying connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}
