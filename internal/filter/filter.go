// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter decides whether a URL belongs to an excluded domain set.
// All functions are pure and safe for concurrent use.
package filter

import (
	"net"
	"net/url"
	"strings"

	"github.com/pdiddy/citecheck/pkg/types"
)

// ForbiddenHosts are never cited, whatever the exclusion set says.
var ForbiddenHosts = []string{
	"vertexaisearch.cloud.google.com",
	"cloud.google.com",
}

// NormalizeHost lower-cases a hostname, drops any port and strips one
// leading "www.".
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}

// Host returns the normalized host of rawURL. It reports false when the URL
// does not parse or has no host.
func Host(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := NormalizeHost(u.Host)
	return host, host != ""
}

// rootHost reads an exclusion entry that may lack a scheme.
func rootHost(entry string) string {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return ""
	}
	if !strings.Contains(entry, "://") {
		entry = "https://" + entry
	}
	host, _ := Host(entry)
	return host
}

// Matches reports whether host equals root or is a subdomain of it.
func Matches(host, root string) bool {
	if host == "" || root == "" {
		return false
	}
	return host == root || strings.HasSuffix(host, "."+root)
}

// ShouldFilter reports whether rawURL points at a forbidden host, the own
// domain or a competitor. Malformed URLs are never filtered.
func ShouldFilter(rawURL string, ex types.Exclusion) bool {
	host, ok := Host(rawURL)
	if !ok {
		return false
	}

	for _, root := range roots(ex) {
		if Matches(host, root) {
			return true
		}
	}
	return false
}

func roots(ex types.Exclusion) []string {
	out := make([]string, 0, len(ForbiddenHosts)+len(ex.ForbiddenHosts)+len(ex.Competitors)+1)
	for _, h := range ForbiddenHosts {
		out = append(out, NormalizeHost(h))
	}
	for _, h := range ex.ForbiddenHosts {
		out = append(out, rootHost(h))
	}
	out = append(out, rootHost(ex.OwnDomain))
	for _, c := range ex.Competitors {
		out = append(out, rootHost(c))
	}
	return out
}

// trackingParams are query keys dropped by NormalizeURL, besides utm_*.
var trackingParams = map[string]bool{
	"gclid":  true,
	"fbclid": true,
}

// NormalizeURL adds an https scheme when none is present and removes
// tracking parameters and the fragment. Unparseable input is returned
// trimmed but otherwise unchanged.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if strings.HasPrefix(strings.ToLower(key), "utm_") || trackingParams[strings.ToLower(key)] {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}
