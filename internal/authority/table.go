// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authority maps topic keywords to well-known authoritative sites
// and probes them as a last-resort replacement for a failed citation.
package authority

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Source is one authoritative site.
type Source struct {
	URL  string
	Name string
}

// Topic ties a keyword set to an ordered list of sources.
type Topic struct {
	Name     string
	Keywords []string
	Sources  []Source
}

// DefaultTopics is the built-in table. Order matters: the first topic with
// a matching keyword wins.
var DefaultTopics = []Topic{
	{
		Name:     "business",
		Keywords: []string{"business", "finance", "economy", "revenue", "profit", "market", "enterprise"},
		Sources: []Source{
			{"https://www.investopedia.com/", "Investopedia"},
			{"https://hbr.org/", "Harvard Business Review"},
			{"https://www.census.gov/", "U.S. Census Bureau"},
			{"https://www.brookings.edu/", "Brookings Institution"},
		},
	},
	{
		Name:     "technology",
		Keywords: []string{"ai", "artificial intelligence", "machine learning", "technology", "software", "automation"},
		Sources: []Source{
			{"https://www.nist.gov/", "NIST"},
			{"https://www.nature.com/", "Nature"},
			{"https://techcrunch.com/", "TechCrunch"},
			{"https://www.ieee.org/", "IEEE"},
		},
	},
	{
		Name:     "healthcare",
		Keywords: []string{"health", "medical", "healthcare", "patient", "treatment", "clinical"},
		Sources: []Source{
			{"https://www.who.int/", "World Health Organization"},
			{"https://www.nejm.org/", "New England Journal of Medicine"},
			{"https://www.nih.gov/", "National Institutes of Health"},
			{"https://jamanetwork.com/", "JAMA Network"},
		},
	},
	{
		Name:     "manufacturing",
		Keywords: []string{"manufacturing", "industry", "production", "factory", "industrial"},
		Sources: []Source{
			{"https://www.manufacturing.net/", "Manufacturing.net"},
			{"https://www.industryweek.com/", "IndustryWeek"},
			{"https://www.nist.gov/", "NIST"},
		},
	},
	{
		Name:     "marketing",
		Keywords: []string{"marketing", "advertising", "digital", "content", "email", "automation", "campaign"},
		Sources: []Source{
			{"https://hbr.org/", "Harvard Business Review"},
			{"https://www.statista.com/", "Statista"},
			{"https://techcrunch.com/", "TechCrunch"},
			{"https://www.pewresearch.org/", "Pew Research Center"},
		},
	},
	{
		Name:     "research",
		Keywords: []string{"research", "study", "report", "data", "statistics"},
		Sources: []Source{
			{"https://www.pewresearch.org/", "Pew Research Center"},
			{"https://www.census.gov/", "U.S. Census Bureau"},
			{"https://www.statista.com/", "Statista"},
			{"https://www.brookings.edu/", "Brookings"},
		},
	},
}

// Table matches free text against topic keywords with one Aho-Corasick
// automaton. Matching is case-insensitive substring matching.
type Table struct {
	topics []Topic

	// mu serializes Match; the matcher keeps per-call state.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	// owner maps a dictionary index to the first topic declaring it.
	owner []int
}

// NewTable builds a Table. Keywords shared by several topics belong to
// the earliest one.
func NewTable(topics []Topic) *Table {
	t := &Table{topics: topics}
	seen := make(map[string]bool)
	var dict []string
	for i, topic := range topics {
		for _, kw := range topic.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			dict = append(dict, kw)
			t.owner = append(t.owner, i)
		}
	}
	t.matcher = ahocorasick.NewStringMatcher(dict)
	return t
}

// Match returns the first topic, in declared order, with a keyword inside text.
func (t *Table) Match(text string) (Topic, bool) {
	t.mu.Lock()
	hits := t.matcher.Match([]byte(strings.ToLower(text)))
	t.mu.Unlock()

	best := -1
	for _, hit := range hits {
		if i := t.owner[hit]; best < 0 || i < best {
			best = i
		}
	}
	if best < 0 {
		return Topic{}, false
	}
	return t.topics[best], true
}
