package worker

import (
	"GoDrop/config"
	"GoDrop/internal/event"
	"GoDrop/internal/mq"
	"GoDrop/model"
	"GoDrop/utils"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type dlqMessage struct {
	Event    event.DownloadEvent `json:"event"`
	Attempt  int                 `json:"attempt"`
	Error    string              `json:"error"`
	FailedAt time.Time           `json:"failed_at"`
}

// AccessWorker consumes download events and persists them as access logs.
type AccessWorker struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAccessWorker constructs an AccessWorker.
func NewAccessWorker(db *gorm.DB, cfg *config.Config) *AccessWorker {
	return &AccessWorker{db: db, cfg: cfg}
}

// Run consumes the event queue until the context is cancelled.
func (w *AccessWorker) Run(ctx context.Context) error {
	client, err := mq.Dial(w.cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := w.cfg.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(
		mq.QueueEvents,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	concurrency := w.cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	burst := w.cfg.WorkerBurst
	if burst <= 0 {
		burst = 1
	}
	var limiter *rate.Limiter
	if w.cfg.WorkerRate <= 0 {
		limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		limiter = rate.NewLimiter(rate.Limit(w.cfg.WorkerRate), burst)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("access worker: delivery channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				w.handleMessage(ctx, client, limiter, d)
			}(delivery)
		}
	}
}

func (w *AccessWorker) handleMessage(ctx context.Context, client *mq.Client, limiter *rate.Limiter, delivery amqp.Delivery) {
	var ev event.DownloadEvent
	if err := json.Unmarshal(delivery.Body, &ev); err != nil {
		log.Printf("access worker: invalid message: %v", err)
		_ = delivery.Ack(false)
		return
	}

	if err := limiter.Wait(ctx); err != nil {
		_ = delivery.Nack(false, true)
		return
	}

	if err := w.process(ctx, ev); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = delivery.Nack(false, true)
			return
		}
		if ev.Attempt < w.cfg.WorkerRetryMax {
			if err := w.scheduleRetry(ctx, client, ev, err); err != nil {
				log.Printf("access worker: retry schedule failed: %v", err)
				_ = delivery.Nack(false, true)
				return
			}
			_ = delivery.Ack(false)
			return
		}
		w.sendToDLQ(ctx, client, ev, err)
		_ = delivery.Ack(false)
		return
	}
	_ = delivery.Ack(false)
}

func (w *AccessWorker) process(ctx context.Context, ev event.DownloadEvent) error {
	entry := model.ShareAccessLog{
		ShareID:   ev.ShareID,
		ShareCode: ev.ShareCode,
		FileID:    ev.FileID,
		Event:     ev.Event,
		ClientIP:  ev.ClientIP,
		CreatedAt: ev.OccurredAt,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := w.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return err
	}

	if ev.Event == model.AccessEventLimitReached {
		w.notifyLimitReached(ev)
	}
	return nil
}

// notifyLimitReached mails the operator, when SMTP and a recipient are
// configured. Mail failure never fails the event.
func (w *AccessWorker) notifyLimitReached(ev event.DownloadEvent) {
	to := os.Getenv("ADMIN_EMAIL")
	if to == "" {
		return
	}
	if err := utils.SendShareLimitReachedMail(to, ev.FileName, ev.ShareCode); err != nil {
		log.Printf("access worker: limit mail failed: %v", err)
	}
}

func (w *AccessWorker) scheduleRetry(ctx context.Context, client *mq.Client, ev event.DownloadEvent, cause error) error {
	ev.Attempt++
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	delay := time.Duration(ev.Attempt) * 10 * time.Second
	log.Printf("access worker: retry %d for share %s: %v", ev.Attempt, ev.ShareCode, cause)
	return client.PublishRetry(ctx, body, delay)
}

func (w *AccessWorker) sendToDLQ(ctx context.Context, client *mq.Client, ev event.DownloadEvent, cause error) {
	body, err := json.Marshal(dlqMessage{
		Event:    ev,
		Attempt:  ev.Attempt,
		Error:    cause.Error(),
		FailedAt: time.Now(),
	})
	if err != nil {
		log.Printf("access worker: dlq marshal failed: %v", err)
		return
	}
	if err := client.PublishDLQ(ctx, body); err != nil {
		log.Printf("access worker: dlq publish failed: %v", err)
	}
}
