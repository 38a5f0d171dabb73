package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/logctx"
)

func TestRedisEmitter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "billing.test")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := newNotifier(&cfgpkg.Config{Notification: cfgpkg.NotificationConfig{Channel: "billing.test"}}, client, zap.NewNop().Sugar())
	<-n.Publish(logctx.WithTraceID(ctx, "trace-1"), &Event{Type: EventSubscriptionActivated, BusinessID: "biz-1", SubscriptionID: "sub-1", InvoiceNumber: 7})

	select {
	case msg := <-sub.Channel():
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		require.Equal(t, EventSubscriptionActivated, ev.Type)
		require.Equal(t, "sub-1", ev.SubscriptionID)
		require.Equal(t, int64(7), ev.InvoiceNumber)
		require.Equal(t, "trace-1", ev.TraceID)
		require.False(t, ev.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event not published")
	}
}

type failingEmitter struct{}

func (failingEmitter) Emit(ctx context.Context, ev *Event) error {
	<-ctx.Done()
	return errors.New("broker unreachable")
}

func TestNotifier_FailuresAreLoggedOnly(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	n := NewNotifier(failingEmitter{}, 10*time.Millisecond, zap.New(core).Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := n.Publish(ctx, &Event{Type: EventSubscriptionActivated, SubscriptionID: "sub-1"})
	// Cancelling the request does not cut the emit short; only the timeout does.
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish did not finish")
	}
	require.Equal(t, 1, logs.FilterMessage("notification_emit_failed").Len())
}

func TestNewNotifier_FallsBackToLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	n := newNotifier(&cfgpkg.Config{}, nil, zap.New(core).Sugar())
	_, ok := n.emitter.(*LogEmitter)
	require.True(t, ok)

	<-n.Publish(context.Background(), &Event{Type: EventSubscriptionCancelled, SubscriptionID: "sub-1"})
	require.Equal(t, 1, logs.FilterMessage("notification_event").Len())
}
