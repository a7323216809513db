package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"egov-portal/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const EventNotificationCreated = "notification.created"

const (
	webhookQueueSize       = 256
	webhookDeliveryTimeout = 15 * time.Second
)

var (
	ErrWebhookQueueFull = errors.New("webhook queue is full")
	ErrWebhookStopped   = errors.New("webhook publisher is stopped")
)

// WebhookPayload - тіло POST-запиту на зовнішній endpoint
type WebhookPayload struct {
	Event        string              `json:"event"`
	Notification models.Notification `json:"notification"`
	SentAt       time.Time           `json:"sent_at"`
}

// WebhookPublisher пересилає сповіщення на NOTIFY_WEBHOOK_URL.
// Publish лише ставить сповіщення в чергу; HTTP-запити робить фоновий
// воркер зі своїм контекстом.
type WebhookPublisher struct {
	client *resty.Client
	url    string

	queue    chan models.Notification
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	// Скасовується, якщо Close не дочекався дренажу черги
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWebhookPublisher(url string) *WebhookPublisher {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(1).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "egov-portal-webhook/1.0")

	ctx, cancel := context.WithCancel(context.Background())
	w := &WebhookPublisher{
		client:  client,
		url:     url,
		queue:   make(chan models.Notification, webhookQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	go w.run()
	return w
}

// Publish не блокується: при переповненій черзі сповіщення відкидається
func (w *WebhookPublisher) Publish(_ context.Context, n models.Notification) error {
	select {
	case <-w.done:
		return ErrWebhookStopped
	default:
	}

	select {
	case w.queue <- n:
		return nil
	default:
		return ErrWebhookQueueFull
	}
}

// Close зупиняє прийом і доставляє те, що вже в черзі, поки ctx дозволяє
func (w *WebhookPublisher) Close(ctx context.Context) error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	select {
	case <-w.stopped:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		<-w.stopped
		return ctx.Err()
	}
}

func (w *WebhookPublisher) run() {
	defer close(w.stopped)

	for {
		select {
		case n := <-w.queue:
			w.deliver(n)
		case <-w.done:
			for {
				select {
				case n := <-w.queue:
					w.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (w *WebhookPublisher) deliver(n models.Notification) {
	ctx, cancel := context.WithTimeout(w.ctx, webhookDeliveryTimeout)
	defer cancel()

	if err := w.send(ctx, n); err != nil {
		logrus.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"user_id":         n.UserID,
		}).WithError(err).Warn("Webhook не доставлено")
	}
}

func (w *WebhookPublisher) send(ctx context.Context, n models.Notification) error {
	payload := WebhookPayload{
		Event:        EventNotificationCreated,
		Notification: n,
		SentAt:       time.Now().UTC(),
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("webhook request failed with status: %d", resp.StatusCode())
	}

	return nil
}
