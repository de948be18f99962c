// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citecheck/internal/assist"
	"github.com/pdiddy/citecheck/internal/authority"
	"github.com/pdiddy/citecheck/internal/breaker"
	"github.com/pdiddy/citecheck/internal/discover"
	"github.com/pdiddy/citecheck/internal/httputil"
	"github.com/pdiddy/citecheck/internal/resolve"
	"github.com/pdiddy/citecheck/internal/status"
	"github.com/pdiddy/citecheck/pkg/types"
)

const defaultOpenAIModel = "gpt-4o-search-preview"

// buildOrchestrator wires the probe client, caches, discovery tiers and
// orchestrator for cfg.
func buildOrchestrator(cfg types.ResolverConfig, logger *zap.Logger) (*resolve.Orchestrator, error) {
	probe := httputil.WithUserAgent(httputil.NewProbeClient(cfg.HTTP), cfg.HTTP.UserAgent)
	checker := status.New(probe, status.NewCache(cfg.Cache, nil), logger.Named("status"))

	fallback := authority.NewFallback(
		authority.NewTable(authority.DefaultTopics),
		checker,
		cfg.Cache.AuthorityTTL,
		nil,
		logger.Named("authority"),
	)

	searcher, err := buildSearcher(cfg.Search, logger)
	if err != nil {
		return nil, err
	}

	engine := discover.New(searcher, checker, fallback, discover.Config{
		HTTPTimeout: cfg.HTTP.Timeout,
		BaseTimeout: cfg.Search.BaseTimeout,
		Scale:       cfg.Search.TimeoutScale,
	}, logger.Named("discover"))

	return resolve.New(checker, engine, resolve.Config{
		MaxConcurrency: cfg.MaxConcurrency,
		Sweepers:       []resolve.Sweeper{checker, fallback},
	}, logger.Named("resolve")), nil
}

// buildSearcher returns the guarded assisted-search backend, or nil when
// assisted search is disabled or has no key.
func buildSearcher(cfg types.SearchConfig, logger *zap.Logger) (assist.Searcher, error) {
	var inner assist.Searcher
	switch cfg.Provider {
	case types.ProviderNone:
		return nil, nil
	case types.ProviderClaude:
		if cfg.APIKey == "" {
			logger.Warn("no anthropic-api-key found, assisted search disabled")
			return nil, nil
		}
		inner = &assist.ClaudeSearcher{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			MaxUses:    cfg.MaxUses,
			MaxRetries: cfg.MaxRetries,
			Client:     &http.Client{},
		}
	case types.ProviderOpenAI:
		if cfg.APIKey == "" {
			logger.Warn("no openai-api-key found, assisted search disabled")
			return nil, nil
		}
		inner = assist.NewOpenAISearcher(cfg.APIKey, cfg.Model, nil)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), max(cfg.Burst, 1))
	}
	b := breaker.New(string(cfg.Provider), breaker.Config{
		Threshold: cfg.BreakerThreshold,
		Cooldown:  cfg.BreakerCooldown,
	}, logger.Named("breaker"))

	return assist.NewGuarded(inner, limiter, b, logger.Named("assist")), nil
}
