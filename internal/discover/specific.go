// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/assist"
	"github.com/pdiddy/citecheck/internal/filter"
)

// trivialPaths are path values that still denote a site's front page.
var trivialPaths = map[string]bool{
	"":           true,
	"index":      true,
	"index.html": true,
	"index.htm":  true,
	"index.php":  true,
	"home":       true,
	"homepage":   true,
	"default":    true,
}

// IsSpecificPage reports whether rawURL has a meaningful path beyond the
// domain root.
func IsSpecificPage(rawURL string) bool {
	s := strings.TrimSpace(rawURL)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.Trim(s, "/")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	slash := strings.Index(s, "/")
	if slash < 0 {
		return false
	}
	path := strings.ToLower(strings.Trim(s[slash+1:], "/"))
	return !trivialPaths[path]
}

// EnsureSpecificPage returns rawURL when it already names a specific page.
// For a bare domain it asks the assisted search for a deeper page on the
// same site; when none is found the domain URL is returned unchanged.
// The returned page has not been status-checked.
func (e *Engine) EnsureSpecificPage(ctx context.Context, rawURL, title string) string {
	if IsSpecificPage(rawURL) || e.searcher == nil {
		return rawURL
	}
	u, err := url.Parse(filter.NormalizeURL(rawURL))
	if err != nil || u.Host == "" {
		return rawURL
	}
	host := filter.NormalizeHost(u.Host)

	raw, err := e.search(ctx, assist.SpecificPagePrompt(host, BuildQuery(title)))
	if err != nil {
		e.logger.Debug("specific page search failed", zap.String("domain", host), zap.Error(err))
		return rawURL
	}

	ans := assist.ParseAnswer(raw)
	if ans.Outcome != assist.Found {
		return rawURL
	}
	candidate := filter.NormalizeURL(ans.URL)
	got, ok := filter.Host(candidate)
	if !ok || got != host || !IsSpecificPage(candidate) {
		e.logger.Debug("specific page rejected", zap.String("domain", host), zap.String("url", ans.URL))
		return rawURL
	}
	return candidate
}
