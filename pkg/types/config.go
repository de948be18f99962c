// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data records and configuration shared across
// citecheck packages.
package types

import "time"

// HTTPConfig holds settings for outbound probes of cited URLs.
type HTTPConfig struct {
	// Timeout is the total time budget for one probe request (default 8s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// ConnectTimeout bounds TCP connection setup (default 2s).
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`

	// MaxRedirects is the redirect depth a single request may follow (default 3).
	MaxRedirects int `json:"max_redirects" yaml:"max_redirects"`

	// UserAgent is the User-Agent header sent with probes (e.g. "citecheck/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheConfig holds the time-to-live windows of the process caches.
type CacheConfig struct {
	// SuccessTTL is how long a reachable URL stays trusted (default 180s).
	SuccessTTL time.Duration `json:"success_ttl" yaml:"success_ttl"`

	// FailureTTL is how long an unreachable URL stays trusted (default 60s).
	FailureTTL time.Duration `json:"failure_ttl" yaml:"failure_ttl"`

	// AuthorityTTL is how long an authority fallback lookup is reused (default 180s).
	AuthorityTTL time.Duration `json:"authority_ttl" yaml:"authority_ttl"`
}

// AIProvider selects the assisted-search backend.
type AIProvider string

const (
	ProviderClaude AIProvider = "claude"
	ProviderOpenAI AIProvider = "openai"
	ProviderNone   AIProvider = "none"
)

// AIConfig holds shared settings for calls to a Generative AI API.
type AIConfig struct {
	// Provider selects claude, openai or none.
	Provider AIProvider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the assisted-search tier.
type SearchConfig struct {
	AIConfig `yaml:",inline"`

	// BaseTimeout caps one assisted-search call (default 20s).
	BaseTimeout time.Duration `json:"base_timeout" yaml:"base_timeout"`

	// TimeoutScale multiplies HTTPConfig.Timeout to derive the adaptive
	// search timeout (default 2.5).
	TimeoutScale float64 `json:"timeout_scale" yaml:"timeout_scale"`

	// MaxUses limits web searches the model may run per call (default 3).
	MaxUses int `json:"max_uses" yaml:"max_uses"`

	// RatePerSecond limits assisted-search calls across the process (default 5).
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second"`

	// Burst is the limiter burst size (default 5).
	Burst int `json:"burst" yaml:"burst"`

	// BreakerThreshold is the consecutive failures that open the breaker (default 5).
	BreakerThreshold int `json:"breaker_threshold" yaml:"breaker_threshold"`

	// BreakerCooldown is how long the breaker stays open (default 30s).
	BreakerCooldown time.Duration `json:"breaker_cooldown" yaml:"breaker_cooldown"`
}

// ResolverConfig groups everything needed to resolve a batch.
type ResolverConfig struct {
	HTTP   HTTPConfig   `json:"http" yaml:"http"`
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
	Search SearchConfig `json:"search" yaml:"search"`

	// MaxConcurrency bounds parallel citation checks. Zero means one
	// goroutine per citation.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// RequestTimeout bounds one resolve request (default 60s).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// DefaultResolverConfig returns the resolver defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		HTTP: HTTPConfig{
			Timeout:        8 * time.Second,
			ConnectTimeout: 2 * time.Second,
			MaxRedirects:   3,
			UserAgent:      "citecheck/0.1",
		},
		Cache: CacheConfig{
			SuccessTTL:   180 * time.Second,
			FailureTTL:   60 * time.Second,
			AuthorityTTL: 180 * time.Second,
		},
		Search: SearchConfig{
			AIConfig: AIConfig{
				Provider:   ProviderClaude,
				Model:      "claude-sonnet-4-5-20250929",
				MaxRetries: 3,
			},
			BaseTimeout:      20 * time.Second,
			TimeoutScale:     2.5,
			MaxUses:          3,
			RatePerSecond:    5,
			Burst:            5,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
	}
}
