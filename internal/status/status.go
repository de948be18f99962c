// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package status checks whether a cited URL is reachable and not an error
// page. Outcomes are cached with a long TTL for reachable URLs and a short
// TTL for unreachable ones.
package status

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/citecheck/internal/cache"
	"github.com/pdiddy/citecheck/internal/filter"
	"github.com/pdiddy/citecheck/internal/metrics"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Result is the outcome of one status check.
type Result struct {
	Valid    bool
	FinalURL string
	Status   int
	Reason   string
}

// Reasons recorded on invalid results.
const (
	ReasonErrorPage = "error_page"
	ReasonSoft404   = "soft_404"
	ReasonNotFound  = "not_found"
	ReasonStatus    = "status"
	ReasonTransport = "transport_error"
)

// maxBodyBytes limits how much of a retrieved page is read for the
// not-found title check.
const maxBodyBytes = 256 << 10

// errorPageSegments are path segments of styled not-found pages served
// with 200. A segment matches when it equals a name or carries it as a
// stem before an extension, as in notfound.aspx.
var errorPageSegments = []string{
	"404",
	"404-error",
	"error",
	"notfound",
	"not-found",
	"page-not-found",
}

// IsErrorPage reports whether the path of rawURL looks like an error page.
// The host and query are ignored.
func IsErrorPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(strings.ToLower(u.Path), "/") {
		if seg == "" {
			continue
		}
		for _, name := range errorPageSegments {
			if seg == name || strings.HasPrefix(seg, name+".") {
				return true
			}
		}
	}
	return false
}

// NewCache returns a status cache with the asymmetric TTL from cfg.
func NewCache(cfg types.CacheConfig, clock cache.Clock) *cache.Cache[Result] {
	success, failure := cfg.SuccessTTL, cfg.FailureTTL
	return cache.New(func(r Result) time.Duration {
		if r.Valid {
			return success
		}
		return failure
	}, clock)
}

// Resolver checks URL liveness. It is safe for concurrent use.
type Resolver struct {
	client *http.Client
	cache  *cache.Cache[Result]
	group  singleflight.Group
	logger *zap.Logger
}

// New creates a Resolver. The client should come from
// httputil.NewProbeClient so redirects are bounded.
func New(client *http.Client, c *cache.Cache[Result], logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, cache: c, logger: logger}
}

// Check reports whether rawURL is valid and the URL it finally resolved to.
func (r *Resolver) Check(ctx context.Context, rawURL string) (bool, string) {
	res := r.Resolve(ctx, rawURL)
	return res.Valid, res.FinalURL
}

// Sweep drops expired cache entries.
func (r *Resolver) Sweep() int {
	removed := r.cache.Sweep()
	r.logger.Debug("status cache swept", zap.Int("removed", removed), zap.Int("remaining", r.cache.Len()))
	return removed
}

type flight struct {
	res      Result
	canceled bool
}

// Resolve returns the full result of a status check. Concurrent calls for
// the same URL share one request.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) Result {
	key := filter.NormalizeURL(rawURL)
	if key == "" {
		return Result{FinalURL: rawURL, Reason: ReasonTransport}
	}

	if res, ok := r.cache.Get(key); ok {
		metrics.StatusCacheLookups.WithLabelValues("hit").Inc()
		return reportable(res, key, rawURL)
	}
	metrics.StatusCacheLookups.WithLabelValues("miss").Inc()

	var f flight
	for {
		ch := r.group.DoChan(key, func() (any, error) {
			res := r.probe(ctx, key)
			if ctx.Err() != nil {
				return flight{res: res, canceled: true}, nil
			}
			r.cache.Set(key, res)
			return flight{res: res}, nil
		})

		select {
		case <-ctx.Done():
			return Result{FinalURL: rawURL, Reason: ReasonTransport}
		case out := <-ch:
			f = out.Val.(flight)
		}
		// A flight led by another caller may have been cut short by that
		// caller's context. Ours is still live, so go again.
		if !f.canceled || ctx.Err() != nil {
			break
		}
		if res, ok := r.cache.Get(key); ok {
			f = flight{res: res}
			break
		}
	}

	res := reportable(f.res, key, rawURL)
	r.logger.Debug("url status",
		zap.String("url", rawURL),
		zap.Bool("valid", res.Valid),
		zap.String("final_url", res.FinalURL),
		zap.Int("status", res.Status),
		zap.String("reason", res.Reason),
		zap.Bool("canceled", f.canceled),
	)
	return res
}

// reportable returns the caller's own URL when an invalid probe never got
// past the requested location.
func reportable(res Result, key, rawURL string) Result {
	if !res.Valid && res.FinalURL == key {
		res.FinalURL = rawURL
	}
	return res
}

func (r *Resolver) probe(ctx context.Context, target string) Result {
	start := time.Now()
	defer func() { metrics.StatusProbeDuration.Observe(time.Since(start).Seconds()) }()

	res := r.head(ctx, target)
	outcome := "valid"
	if !res.Valid {
		outcome = res.Reason
	}
	metrics.StatusChecks.WithLabelValues(outcome).Inc()
	return res
}

func (r *Resolver) head(ctx context.Context, target string) Result {
	resp, err := r.send(ctx, http.MethodHead, target)
	if err != nil {
		return Result{FinalURL: target, Reason: ReasonTransport}
	}
	drain(resp)
	final := resp.Request.URL.String()

	switch {
	case resp.StatusCode == http.StatusOK:
		if IsErrorPage(final) {
			return Result{FinalURL: final, Status: resp.StatusCode, Reason: ReasonErrorPage}
		}
		return Result{Valid: true, FinalURL: final, Status: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return Result{FinalURL: final, Status: resp.StatusCode, Reason: ReasonNotFound}
	case isRedirect(resp.StatusCode):
		return r.retrieve(ctx, final)
	default:
		return Result{FinalURL: target, Status: resp.StatusCode, Reason: ReasonStatus}
	}
}

// retrieve follows a redirect with a full GET and classifies the result.
func (r *Resolver) retrieve(ctx context.Context, target string) Result {
	resp, err := r.send(ctx, http.MethodGet, target)
	if err != nil {
		return Result{FinalURL: target, Reason: ReasonTransport}
	}
	defer drain(resp)
	final := resp.Request.URL.String()

	switch {
	case resp.StatusCode != http.StatusOK:
		return Result{FinalURL: final, Status: resp.StatusCode, Reason: ReasonStatus}
	case IsErrorPage(final):
		return Result{FinalURL: final, Status: resp.StatusCode, Reason: ReasonErrorPage}
	case softNotFound(resp):
		return Result{FinalURL: final, Status: resp.StatusCode, Reason: ReasonSoft404}
	}
	return Result{Valid: true, FinalURL: final, Status: resp.StatusCode}
}

func (r *Resolver) send(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.Debug("probe failed", zap.String("method", method), zap.String("url", target), zap.Error(err))
		}
		return nil, err
	}
	return resp, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
}
