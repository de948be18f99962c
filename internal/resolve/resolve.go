// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve validates a batch of citations concurrently. Every input
// citation yields exactly one output citation at the same position.
package resolve

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citecheck/internal/filter"
	"github.com/pdiddy/citecheck/internal/metrics"
	"github.com/pdiddy/citecheck/internal/parse"
	"github.com/pdiddy/citecheck/pkg/types"
)

// tracerName scopes spans. The global provider is resolved per call.
const tracerName = "github.com/pdiddy/citecheck/internal/resolve"

// StatusChecker reports whether a URL is reachable and where it resolved.
type StatusChecker interface {
	Check(ctx context.Context, rawURL string) (bool, string)
}

// Discoverer finds replacements for failed citations.
type Discoverer interface {
	FindAlternative(ctx context.Context, title string, ex types.Exclusion) (types.Alternative, bool)
	EnsureSpecificPage(ctx context.Context, rawURL, title string) string
}

// Sweeper drops expired cache entries.
type Sweeper interface {
	Sweep() int
}

// Config tunes an Orchestrator.
type Config struct {
	// MaxConcurrency bounds in-flight citations. Zero runs one goroutine
	// per citation.
	MaxConcurrency int

	// Sweepers are swept at the start of every Run.
	Sweepers []Sweeper
}

// Orchestrator runs the per-citation pipeline over a batch.
type Orchestrator struct {
	status   StatusChecker
	discover Discoverer
	cfg      Config
	logger   *zap.Logger
}

// New creates an Orchestrator.
func New(status StatusChecker, discover Discoverer, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{status: status, discover: discover, cfg: cfg, logger: logger}
}

// Run parses sources, validates every citation and summarizes the batch.
// Per-citation failures show up as invalid citations, never as errors.
func (o *Orchestrator) Run(ctx context.Context, sources string, ex types.Exclusion) types.Report {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "resolve.Run")
	defer span.End()

	start := time.Now()
	for _, s := range o.cfg.Sweepers {
		if n := s.Sweep(); n > 0 {
			o.logger.Debug("swept expired cache entries", zap.Int("count", n))
		}
	}

	citations := o.ValidateAll(ctx, parse.Sources(sources), ex)
	report := types.Report{
		ID:        uuid.NewString(),
		Citations: citations,
		Summary:   types.Summarize(citations),
		Elapsed:   time.Since(start),
	}

	metrics.BatchDuration.Observe(report.Elapsed.Seconds())
	span.SetAttributes(
		attribute.String("batch.id", report.ID),
		attribute.Int("citations.total", report.Summary.Total),
		attribute.Int("citations.invalid", report.Summary.Invalid),
		attribute.Int("citations.replaced", report.Summary.Replaced),
	)
	o.logger.Info("batch resolved",
		zap.String("id", report.ID),
		zap.Int("total", report.Summary.Total),
		zap.Int("valid", report.Summary.Valid),
		zap.Int("replaced", report.Summary.Replaced),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report
}

// ValidateAll validates citations concurrently and returns a new slice of
// the same length, each result at its input's index.
func (o *Orchestrator) ValidateAll(ctx context.Context, citations []types.Citation, ex types.Exclusion) []types.Citation {
	out := make([]types.Citation, len(citations))

	var g errgroup.Group
	if o.cfg.MaxConcurrency > 0 {
		g.SetLimit(o.cfg.MaxConcurrency)
	}
	for i, c := range citations {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("citation check panicked",
						zap.Int("number", c.Number),
						zap.String("url", c.URL),
						zap.Any("panic", r),
					)
					metrics.Citations.WithLabelValues("panic").Inc()
					c.Valid = false
					c.OriginalURL = ""
					out[i] = c
				}
			}()
			out[i] = o.Validate(ctx, c, ex)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Validate runs the pipeline for one citation:
//
//  1. A reachable, non-excluded URL is kept, at its resolved location. A
//     bare domain root is upgraded to a deeper page on the same site when
//     that page checks out too.
//  2. A reachable but excluded URL is swapped for an alternative, or kept
//     and marked invalid.
//  3. An unreachable domain root is first upgraded to a deeper page on the
//     same site; failing that, an alternative is looked for.
//
// Any substitute has been status-checked and filtered before it is used.
func (o *Orchestrator) Validate(ctx context.Context, c types.Citation, ex types.Exclusion) types.Citation {
	out := o.validate(ctx, c, ex)
	switch {
	case !out.Valid:
		metrics.Citations.WithLabelValues("invalid").Inc()
	case out.Replaced():
		metrics.Citations.WithLabelValues("replaced").Inc()
	default:
		metrics.Citations.WithLabelValues("valid").Inc()
	}
	return out
}

func (o *Orchestrator) validate(ctx context.Context, c types.Citation, ex types.Exclusion) types.Citation {
	failed := c
	failed.Valid = false
	failed.OriginalURL = ""
	if ctx.Err() != nil {
		return failed
	}

	valid, final := o.status.Check(ctx, c.URL)
	if valid {
		if !filter.ShouldFilter(c.URL, ex) && !filter.ShouldFilter(final, ex) {
			if page := o.discover.EnsureSpecificPage(ctx, final, c.Title); page != final {
				if deeper, ok := o.accept(ctx, page, ex); ok {
					return replaced(c, deeper, c.Title)
				}
			}
			kept := failed
			kept.URL = final
			kept.Valid = true
			return kept
		}
		o.logger.Debug("citation excluded", zap.Int("number", c.Number), zap.String("url", c.URL))
		if alt, ok := o.discover.FindAlternative(ctx, c.Title, ex); ok {
			return o.replace(ctx, c, alt, ex)
		}
		return failed
	}

	if page := o.discover.EnsureSpecificPage(ctx, c.URL, c.Title); page != c.URL {
		if final, ok := o.accept(ctx, page, ex); ok {
			return replaced(c, final, c.Title)
		}
	}

	if alt, ok := o.discover.FindAlternative(ctx, c.Title, ex); ok {
		return o.replace(ctx, c, alt, ex)
	}
	o.logger.Debug("no replacement found", zap.Int("number", c.Number), zap.String("url", c.URL))
	return failed
}

// replace substitutes alt for c. The alternative has already been checked;
// a bare-domain alternative is upgraded to a deeper page when that page
// checks out too.
func (o *Orchestrator) replace(ctx context.Context, c types.Citation, alt types.Alternative, ex types.Exclusion) types.Citation {
	target := alt.URL
	if page := o.discover.EnsureSpecificPage(ctx, alt.URL, alt.Title); page != alt.URL {
		if final, ok := o.accept(ctx, page, ex); ok {
			target = final
		}
	}
	title := alt.Title
	if title == "" {
		title = c.Title
	}
	return replaced(c, target, title)
}

func (o *Orchestrator) accept(ctx context.Context, rawURL string, ex types.Exclusion) (string, bool) {
	if filter.ShouldFilter(rawURL, ex) {
		return "", false
	}
	valid, final := o.status.Check(ctx, rawURL)
	if !valid || filter.ShouldFilter(final, ex) {
		return "", false
	}
	return final, true
}

func replaced(c types.Citation, url, title string) types.Citation {
	return types.Citation{
		Number:      c.Number,
		URL:         url,
		Title:       title,
		Valid:       true,
		OriginalURL: c.URL,
	}
}
