// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assist

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citecheck/internal/breaker"
)

type stubSearcher struct {
	calls int32
	out   string
	err   error
}

func (s *stubSearcher) Search(context.Context, string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.out, s.err
}

func TestGuarded_PassesThrough(t *testing.T) {
	inner := &stubSearcher{out: "answer"}
	g := NewGuarded(inner, nil, nil, zaptest.NewLogger(t))

	out, err := g.Search(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, "custom", g.name)
}

func TestGuarded_BreakerOpens(t *testing.T) {
	inner := &stubSearcher{err: errors.New("upstream 500")}
	b := breaker.New("assist-test", breaker.Config{Threshold: 2, Cooldown: time.Hour}, nil)
	g := NewGuarded(inner, nil, b, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.Search(ctx, "p")
		require.Error(t, err)
	}

	_, err := g.Search(ctx, "p")
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestGuarded_RateLimitHonorsDeadline(t *testing.T) {
	inner := &stubSearcher{out: "ok"}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	g := NewGuarded(inner, limiter, nil, nil)

	_, err := g.Search(context.Background(), "p")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Search(ctx, "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestGuarded_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ok := NewGuarded(&stubSearcher{out: "answer"}, nil, nil, nil)
	_, err := ok.Search(context.Background(), "p")
	require.NoError(t, err)

	failing := NewGuarded(&stubSearcher{err: errors.New("upstream 500")}, nil, nil, nil)
	_, err = failing.Search(context.Background(), "p")
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	for i, want := range []string{"ok", "error"} {
		span := spans[i]
		assert.Equal(t, "assist.Search", span.Name())
		attrs := map[attribute.Key]string{}
		for _, kv := range span.Attributes() {
			attrs[kv.Key] = kv.Value.AsString()
		}
		assert.Equal(t, "custom", attrs["assist.backend"])
		assert.Equal(t, want, attrs["assist.outcome"])
	}
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1, "error recorded on span")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "ok", classify(nil))
	assert.Equal(t, "rejected", classify(breaker.ErrOpen))
	assert.Equal(t, "timeout", classify(context.DeadlineExceeded))
	assert.Equal(t, "error", classify(errors.New("boom")))
}
