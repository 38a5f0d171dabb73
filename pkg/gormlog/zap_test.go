package gormlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fatflowers/cardbilling/pkg/logctx"
)

func TestShortCaller(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/home/ci/src/internal/platform/db/db.go:38", want: "internal/platform/db/db.go:38"},
		{in: "/a/b/pkg/x/y.go:12", want: "pkg/x/y.go:12"},
		{in: "/a/b/c/d.go:1", want: "b/c/d.go:1"},
		{in: "d.go:1", want: "d.go:1"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, shortCaller(tt.in), tt.in)
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, gormlogger.Silent, ParseLevel("silent"))
	require.Equal(t, gormlogger.Info, ParseLevel("INFO"))
	require.Equal(t, gormlogger.Warn, ParseLevel(""))
}

func TestTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core).Sugar(), Options{SlowThreshold: time.Millisecond, Level: "warn"})
	ctx := logctx.WithTraceID(context.Background(), "t-1")
	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), sqlFn, nil)
	require.Equal(t, 0, logs.Len())

	l.Trace(ctx, time.Now().Add(-time.Second), sqlFn, nil)
	require.Equal(t, 1, logs.FilterMessage("gorm_slow").Len())

	l.Trace(ctx, time.Now(), sqlFn, gorm.ErrRecordNotFound)
	require.Equal(t, 0, logs.FilterMessage("gorm_trace").Len())

	l.Trace(ctx, time.Now(), sqlFn, errors.New("boom"))
	entries := logs.FilterMessage("gorm_trace").All()
	require.Len(t, entries, 1)
	require.Equal(t, "t-1", entries[0].ContextMap()["trace_id"])
}
