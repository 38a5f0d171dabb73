package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/logctx"
)

const (
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCancelled = "subscription.cancelled"

	defaultChannel = "billing.events"
	defaultTimeout = 3 * time.Second
)

// Event is consumed by the delivery services (WhatsApp, email).
type Event struct {
	Type           string         `json:"type"`
	BusinessID     string         `json:"business_id"`
	SubscriptionID string         `json:"subscription_id"`
	InvoiceID      string         `json:"invoice_id,omitempty"`
	InvoiceNumber  int64          `json:"invoice_number,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
	TraceID        string         `json:"trace_id,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

type Emitter interface {
	Emit(ctx context.Context, ev *Event) error
}

// RedisEmitter publishes events as JSON on a Redis channel.
type RedisEmitter struct {
	client  *goredis.Client
	channel string
}

func NewRedisEmitter(client *goredis.Client, channel string) *RedisEmitter {
	if channel == "" {
		channel = defaultChannel
	}
	return &RedisEmitter{client: client, channel: channel}
}

func (e *RedisEmitter) Emit(ctx context.Context, ev *Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := e.client.Publish(ctx, e.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// LogEmitter only logs events. It is used when Redis is not configured.
type LogEmitter struct {
	log *zap.SugaredLogger
}

func NewLogEmitter(log *zap.SugaredLogger) *LogEmitter {
	return &LogEmitter{log: log}
}

func (e *LogEmitter) Emit(ctx context.Context, ev *Event) error {
	logctx.FromCtx(ctx, e.log).Infow("notification_event", "type", ev.Type, "subscription_id", ev.SubscriptionID, "invoice_id", ev.InvoiceID)
	return nil
}

// Notifier emits events in the background. Delivery is fire-and-forget:
// failures are logged and never reach the caller.
type Notifier struct {
	emitter Emitter
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewNotifier(emitter Emitter, timeout time.Duration, log *zap.SugaredLogger) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{emitter: emitter, timeout: timeout, log: log}
}

// Publish emits ev asynchronously and returns a channel closed once the
// attempt has finished.
func (n *Notifier) Publish(ctx context.Context, ev *Event) <-chan struct{} {
	done := make(chan struct{})
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if ev.TraceID == "" {
		ev.TraceID = logctx.TraceID(ctx)
	}
	lg := logctx.FromCtx(ctx, n.log)
	emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	go func() {
		defer close(done)
		defer cancel()
		if err := n.emitter.Emit(emitCtx, ev); err != nil {
			lg.Errorw("notification_emit_failed", "type", ev.Type, "subscription_id", ev.SubscriptionID, "err", err)
		}
	}()
	return done
}

func newNotifier(cfg *cfgpkg.Config, client *goredis.Client, log *zap.SugaredLogger) *Notifier {
	var emitter Emitter = NewLogEmitter(log)
	if client != nil {
		emitter = NewRedisEmitter(client, cfg.Notification.Channel)
	}
	return NewNotifier(emitter, cfg.Notification.Timeout, log)
}

var Module = fx.Options(
	fx.Provide(newNotifier),
)
