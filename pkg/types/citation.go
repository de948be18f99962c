// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Citation is one numbered source tracked through resolution.
type Citation struct {
	// Number is the 1-based position after parsing. Source numbering is discarded.
	Number int `json:"number" yaml:"number"`

	// URL is the cited location. It may be replaced by a discovered alternative.
	URL string `json:"url" yaml:"url"`

	// Title is the descriptive text that accompanied the URL.
	Title string `json:"title" yaml:"title"`

	// Valid reports whether URL was confirmed reachable and not excluded.
	Valid bool `json:"valid" yaml:"valid"`

	// OriginalURL holds the parsed URL when URL was substituted.
	OriginalURL string `json:"original_url,omitempty" yaml:"original_url,omitempty"`
}

// Replaced reports whether the citation now points at a substitute URL.
func (c Citation) Replaced() bool {
	return c.OriginalURL != "" && c.OriginalURL != c.URL
}

// Exclusion lists the domains that must never be cited in one batch.
type Exclusion struct {
	// OwnDomain is the publisher's own site (e.g. "acme.com").
	OwnDomain string `json:"own_domain,omitempty" yaml:"own_domain,omitempty"`

	// Competitors are domains or URLs of competing sites.
	Competitors []string `json:"competitors,omitempty" yaml:"competitors,omitempty"`

	// ForbiddenHosts extends the built-in forbidden host list.
	ForbiddenHosts []string `json:"forbidden_hosts,omitempty" yaml:"forbidden_hosts,omitempty"`
}

// Alternative is a replacement source found by discovery.
type Alternative struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Valid    int `json:"valid" yaml:"valid"`
	Invalid  int `json:"invalid" yaml:"invalid"`
	Replaced int `json:"replaced" yaml:"replaced"`
}

// Report is the result of resolving one sources block.
type Report struct {
	ID        string        `json:"id" yaml:"id"`
	Citations []Citation    `json:"citations" yaml:"citations"`
	Summary   Summary       `json:"summary" yaml:"summary"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Summarize counts valid, invalid and replaced citations.
func Summarize(citations []Citation) Summary {
	s := Summary{Total: len(citations)}
	for _, c := range citations {
		if c.Valid {
			s.Valid++
		} else {
			s.Invalid++
		}
		if c.Replaced() {
			s.Replaced++
		}
	}
	return s
}
