// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds replacement URLs for citations that are dead or
// excluded, and upgrades bare domain URLs to specific pages.
package discover

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/assist"
	"github.com/pdiddy/citecheck/internal/authority"
	"github.com/pdiddy/citecheck/internal/filter"
	"github.com/pdiddy/citecheck/internal/metrics"
	"github.com/pdiddy/citecheck/pkg/types"
)

const (
	maxQueryLen        = 100
	defaultBaseTimeout = 20 * time.Second
	defaultScale       = 2.5
)

// StatusChecker reports whether a URL is reachable and where it resolved.
type StatusChecker interface {
	Check(ctx context.Context, rawURL string) (bool, string)
}

// Config holds the timeouts used to derive the assisted-search budget.
type Config struct {
	// HTTPTimeout is the probe timeout that the search budget scales from.
	HTTPTimeout time.Duration
	// BaseTimeout caps the search budget (default 20s).
	BaseTimeout time.Duration
	// Scale multiplies HTTPTimeout (default 2.5).
	Scale float64
}

// Engine runs alternative discovery. A nil searcher skips the assisted
// tier; a nil fallback skips the authority tier.
type Engine struct {
	searcher assist.Searcher
	status   StatusChecker
	fallback *authority.Fallback
	cfg      Config
	logger   *zap.Logger
}

// New creates an Engine.
func New(searcher assist.Searcher, status StatusChecker, fallback *authority.Fallback, cfg Config, logger *zap.Logger) *Engine {
	if cfg.BaseTimeout <= 0 {
		cfg.BaseTimeout = defaultBaseTimeout
	}
	if cfg.Scale <= 0 {
		cfg.Scale = defaultScale
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{searcher: searcher, status: status, fallback: fallback, cfg: cfg, logger: logger}
}

// SearchTimeout is min(BaseTimeout, HTTPTimeout*Scale). Without an HTTP
// timeout the base timeout applies.
func (e *Engine) SearchTimeout() time.Duration {
	if e.cfg.HTTPTimeout <= 0 {
		return e.cfg.BaseTimeout
	}
	scaled := time.Duration(float64(e.cfg.HTTPTimeout) * e.cfg.Scale)
	return min(e.cfg.BaseTimeout, scaled)
}

var (
	markerRe = regexp.MustCompile(`\[\d+\]`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// BuildQuery turns a citation title into a search query: citation markers
// removed, whitespace collapsed, at most 100 characters followed by "...".
func BuildQuery(title string) string {
	q := markerRe.ReplaceAllString(title, "")
	q = strings.TrimSpace(spaceRe.ReplaceAllString(q, " "))
	if r := []rune(q); len(r) > maxQueryLen {
		q = string(r[:maxQueryLen]) + "..."
	}
	return q
}

// FindAlternative looks for a reachable, non-excluded replacement for a
// citation titled title. A cached authority result wins outright; otherwise
// assisted search runs first and the authority table second.
func (e *Engine) FindAlternative(ctx context.Context, title string, ex types.Exclusion) (types.Alternative, bool) {
	query := BuildQuery(title)
	if query == "" {
		return types.Alternative{}, false
	}

	if e.fallback != nil {
		if alt, ok := e.fallback.Cached(query, ex); ok {
			metrics.Alternatives.WithLabelValues("cache", "found").Inc()
			return alt, true
		}
	}

	if alt, ok := e.searchTier(ctx, query, title, ex); ok {
		metrics.Alternatives.WithLabelValues("search", "found").Inc()
		return alt, true
	}
	metrics.Alternatives.WithLabelValues("search", "none").Inc()

	if e.fallback == nil || ctx.Err() != nil {
		return types.Alternative{}, false
	}
	alt, ok := e.fallback.Lookup(ctx, query, ex)
	outcome := "none"
	if ok {
		outcome = "found"
	}
	metrics.Alternatives.WithLabelValues("authority", outcome).Inc()
	return alt, ok
}

func (e *Engine) searchTier(ctx context.Context, query, title string, ex types.Exclusion) (types.Alternative, bool) {
	if e.searcher == nil {
		return types.Alternative{}, false
	}

	raw, err := e.search(ctx, assist.AlternativePrompt(query, ex))
	if err != nil {
		e.logger.Info("assisted search unavailable, using authority fallback",
			zap.String("query", query),
			zap.Error(err),
		)
		return types.Alternative{}, false
	}

	ans := assist.ParseAnswer(raw)
	e.logger.Debug("assisted search answered",
		zap.String("query", query),
		zap.Stringer("outcome", ans.Outcome),
	)
	switch ans.Outcome {
	case assist.Found:
		if final, ok := e.accept(ctx, ans.URL, ex); ok {
			if ans.Title == "" {
				ans.Title = title
			}
			return types.Alternative{URL: final, Title: ans.Title}, true
		}
		e.logger.Debug("assisted result rejected", zap.String("url", ans.URL))
	case assist.NotFound:
		e.logger.Debug("assisted search found nothing", zap.String("query", query))
		return types.Alternative{}, false
	}

	for _, candidate := range assist.ScrapeURLs(raw) {
		if final, ok := e.accept(ctx, candidate, ex); ok {
			t := assist.TitleNear(raw, candidate)
			if t == "" {
				t = title
			}
			return types.Alternative{URL: final, Title: t}, true
		}
	}
	return types.Alternative{}, false
}

// accept normalizes a candidate and confirms it is neither excluded nor
// unreachable. The returned URL is where the candidate resolved.
func (e *Engine) accept(ctx context.Context, candidate string, ex types.Exclusion) (string, bool) {
	u := filter.NormalizeURL(candidate)
	if u == "" || filter.ShouldFilter(u, ex) {
		return "", false
	}
	valid, final := e.status.Check(ctx, u)
	if !valid || filter.ShouldFilter(final, ex) {
		return "", false
	}
	return final, true
}

// search runs one assisted-search call under the adaptive timeout.
func (e *Engine) search(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.SearchTimeout())
	defer cancel()
	return e.searcher.Search(ctx, prompt)
}
