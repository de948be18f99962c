// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citecheck/internal/breaker"
	"github.com/pdiddy/citecheck/internal/metrics"
)

// tracerName scopes spans. The global provider is resolved per call.
const tracerName = "github.com/pdiddy/citecheck/internal/assist"

// Guarded wraps a Searcher with a process-wide rate limit, a circuit
// breaker, metrics and tracing.
type Guarded struct {
	inner   Searcher
	name    string
	limiter *rate.Limiter
	breaker *breaker.Breaker
	logger  *zap.Logger
}

// NewGuarded wraps inner. A nil limiter or breaker disables that guard.
func NewGuarded(inner Searcher, limiter *rate.Limiter, b *breaker.Breaker, logger *zap.Logger) *Guarded {
	name := "custom"
	if n, ok := inner.(interface{ Name() string }); ok {
		name = n.Name()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guarded{inner: inner, name: name, limiter: limiter, breaker: b, logger: logger}
}

// Search waits for a rate-limit token, then calls the wrapped searcher
// through the breaker.
func (g *Guarded) Search(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "assist.Search")
	span.SetAttributes(attribute.String("assist.backend", g.name))
	defer span.End()

	start := time.Now()
	out, err := g.search(ctx, prompt)
	outcome := classify(err)

	metrics.SearchCalls.WithLabelValues(g.name, outcome).Inc()
	metrics.SearchDuration.WithLabelValues(g.name).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("assist.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		g.logger.Debug("assisted search failed",
			zap.String("backend", g.name),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return "", err
	}
	return out, nil
}

func (g *Guarded) search(ctx context.Context, prompt string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}
	}
	if g.breaker == nil {
		return g.inner.Search(ctx, prompt)
	}

	var out string
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.inner.Search(ctx, prompt)
		return err
	})
	return out, err
}

func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, breaker.ErrOpen):
		return "rejected"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}
