// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net"
	"net/http"
	"time"

	"github.com/pdiddy/citecheck/pkg/types"
)

const (
	defaultTimeout        = 8 * time.Second
	defaultConnectTimeout = 2 * time.Second
	defaultMaxRedirects   = 3
	defaultIdleConns      = 100
	defaultIdleConnsHost  = 10
	defaultIdleTimeout    = 90 * time.Second
)

// RedirectPolicy returns a CheckRedirect function that follows at most
// maxHops redirects. Past the limit the client returns the last redirect
// response unchanged instead of an error, so callers can classify it.
// maxHops <= 0 disables redirect following entirely.
func RedirectPolicy(maxHops int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > maxHops {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// NewProbeClient builds the client used to check cited URLs: a short
// connect timeout, a total request timeout and bounded redirects. A
// negative MaxRedirects disables redirect following.
func NewProbeClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = defaultConnectTimeout
	}

	hops := cfg.MaxRedirects
	if hops == 0 {
		hops = defaultMaxRedirects
	}

	dialer := &net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          defaultIdleConns,
		MaxIdleConnsPerHost:   defaultIdleConnsHost,
		IdleConnTimeout:       defaultIdleTimeout,
		TLSHandshakeTimeout:   connect + time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Timeout:       timeout,
		Transport:     transport,
		CheckRedirect: RedirectPolicy(hops),
	}
}

// userAgentTransport stamps a User-Agent on requests that lack one.
type userAgentTransport struct {
	base http.RoundTripper
	ua   string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.ua)
	}
	return t.base.RoundTrip(req)
}

// WithUserAgent wraps client's transport so every request carries ua.
func WithUserAgent(client *http.Client, ua string) *http.Client {
	if ua == "" {
		return client
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := *client
	c.Transport = &userAgentTransport{base: base, ua: ua}
	return &c
}
