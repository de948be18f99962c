// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/citecheck/pkg/types"
)

// resolverFlags registers the flags shared by resolve and serve.
func resolverFlags(fs *pflag.FlagSet) {
	fs.String("provider", "", "assisted-search backend: claude, openai or none (default claude)")
	fs.String("model", "", "assisted-search model")
	fs.String("api-key", "", "assisted-search API key (default from .secrets/)")
	fs.Duration("timeout", 0, "HTTP timeout per URL check (default 8s)")
	fs.Duration("connect-timeout", 0, "TCP connect timeout (default 2s)")
	fs.Duration("search-timeout", 0, "upper bound for one assisted search (default 20s)")
	fs.Int("concurrency", 0, "maximum citations checked at once (default: all)")
}

// resolverFlagKeys maps config keys to the flags that override them.
var resolverFlagKeys = map[string]string{
	"search.provider":      "provider",
	"search.model":         "model",
	"search.api_key":       "api-key",
	"http.timeout":         "timeout",
	"http.connect_timeout": "connect-timeout",
	"search.base_timeout":  "search-timeout",
	"max_concurrency":      "concurrency",
}

// bindResolverFlags binds the running command's flags. Binding happens at
// run time because resolve and serve share config keys.
func bindResolverFlags(fs *pflag.FlagSet) error {
	for key, flag := range resolverFlagKeys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadResolverConfig overlays config file, environment and flag values on
// the defaults.
func loadResolverConfig() (types.ResolverConfig, error) {
	cfg := types.DefaultResolverConfig()

	durations := map[string]*time.Duration{
		"http.timeout":            &cfg.HTTP.Timeout,
		"http.connect_timeout":    &cfg.HTTP.ConnectTimeout,
		"cache.success_ttl":       &cfg.Cache.SuccessTTL,
		"cache.failure_ttl":       &cfg.Cache.FailureTTL,
		"cache.authority_ttl":     &cfg.Cache.AuthorityTTL,
		"search.base_timeout":     &cfg.Search.BaseTimeout,
		"search.breaker_cooldown": &cfg.Search.BreakerCooldown,
	}
	for key, dst := range durations {
		if viper.IsSet(key) {
			*dst = viper.GetDuration(key)
		}
	}

	ints := map[string]*int{
		"http.max_redirects":       &cfg.HTTP.MaxRedirects,
		"search.max_uses":          &cfg.Search.MaxUses,
		"search.max_retries":       &cfg.Search.MaxRetries,
		"search.burst":             &cfg.Search.Burst,
		"search.breaker_threshold": &cfg.Search.BreakerThreshold,
		"max_concurrency":          &cfg.MaxConcurrency,
	}
	for key, dst := range ints {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}

	if viper.IsSet("http.user_agent") {
		cfg.HTTP.UserAgent = viper.GetString("http.user_agent")
	}
	if viper.IsSet("search.model") {
		cfg.Search.Model = viper.GetString("search.model")
	}
	if viper.IsSet("search.timeout_scale") {
		cfg.Search.TimeoutScale = viper.GetFloat64("search.timeout_scale")
	}
	if viper.IsSet("search.rate_per_second") {
		cfg.Search.RatePerSecond = viper.GetFloat64("search.rate_per_second")
	}
	if viper.IsSet("search.provider") {
		cfg.Search.Provider = types.AIProvider(viper.GetString("search.provider"))
	}

	switch cfg.Search.Provider {
	case types.ProviderClaude, types.ProviderOpenAI, types.ProviderNone:
	case "":
		cfg.Search.Provider = types.ProviderClaude
	default:
		return cfg, fmt.Errorf("unknown provider %q: use claude, openai or none", cfg.Search.Provider)
	}
	if cfg.Search.Provider == types.ProviderOpenAI && !viper.IsSet("search.model") {
		cfg.Search.Model = defaultOpenAIModel
	}

	cfg.Search.APIKey = loadedSecrets.APIKey(cfg.Search.Provider, viper.GetString("search.api_key"))
	return cfg, nil
}
