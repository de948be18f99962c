// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package authority

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/cache"
	"github.com/pdiddy/citecheck/internal/filter"
	"github.com/pdiddy/citecheck/pkg/types"
)

const (
	cacheKeyLen = 100
	titleLen    = 60
)

// StatusChecker reports whether a URL is reachable and where it resolved.
type StatusChecker interface {
	Check(ctx context.Context, rawURL string) (bool, string)
}

// lookup is a cached fallback outcome. found=false records a miss.
type lookup struct {
	alt   types.Alternative
	found bool
}

// Fallback probes the authority table for a query and caches the outcome,
// negative outcomes included.
type Fallback struct {
	table  *Table
	status StatusChecker
	cache  *cache.Cache[lookup]
	logger *zap.Logger
}

// NewFallback creates a Fallback whose cache entries live for ttl.
func NewFallback(table *Table, status StatusChecker, ttl time.Duration, clock cache.Clock, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{
		table:  table,
		status: status,
		cache:  cache.New(cache.Fixed[lookup](ttl), clock),
		logger: logger,
	}
}

// Cached returns a fresh positive cache entry for query that ex does not
// exclude.
func (f *Fallback) Cached(query string, ex types.Exclusion) (types.Alternative, bool) {
	l, ok := f.cache.Get(cacheKey(query))
	if !ok || !l.found || filter.ShouldFilter(l.alt.URL, ex) {
		return types.Alternative{}, false
	}
	return l.alt, true
}

// Lookup returns the first reachable, non-excluded source of the first
// topic matching query.
func (f *Fallback) Lookup(ctx context.Context, query string, ex types.Exclusion) (types.Alternative, bool) {
	key := cacheKey(query)
	if l, ok := f.cache.Get(key); ok {
		if !l.found {
			return types.Alternative{}, false
		}
		if !filter.ShouldFilter(l.alt.URL, ex) {
			return l.alt, true
		}
	}

	topic, ok := f.table.Match(query)
	if ok {
		for _, src := range topic.Sources {
			if ctx.Err() != nil {
				return types.Alternative{}, false
			}
			if filter.ShouldFilter(src.URL, ex) {
				continue
			}
			valid, final := f.status.Check(ctx, src.URL)
			if !valid {
				continue
			}
			alt := types.Alternative{URL: final, Title: truncate(query, titleLen) + " - " + src.Name}
			f.cache.Set(key, lookup{alt: alt, found: true})
			f.logger.Debug("authority fallback found",
				zap.String("topic", topic.Name),
				zap.String("url", final),
			)
			return alt, true
		}
	}

	if ctx.Err() != nil {
		return types.Alternative{}, false
	}
	f.cache.Set(key, lookup{})
	return types.Alternative{}, false
}

// Sweep drops expired cache entries.
func (f *Fallback) Sweep() int {
	removed := f.cache.Sweep()
	f.logger.Debug("authority cache swept", zap.Int("removed", removed), zap.Int("remaining", f.cache.Len()))
	return removed
}

func cacheKey(query string) string {
	return truncate(query, cacheKeyLen)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
