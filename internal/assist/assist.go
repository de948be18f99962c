// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assist runs single-turn, web-search-enabled model calls and
// interprets their answers under a strict JSON contract:
//
//	{"url": "https://...", "title": "...", "verified": true}
//	{"url": "", "verified": false}
//
// Anything else is Unstructured, and callers scrape URL tokens from the raw text.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Searcher performs one assisted-search call and returns the raw text answer.
// Implementations must honor ctx cancellation.
type Searcher interface {
	Search(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when a backend answers with no text.
var ErrEmptyResponse = errors.New("assisted search returned no text")

// Outcome classifies an answer.
type Outcome int

const (
	// Unstructured means no object in the answer followed the contract.
	Unstructured Outcome = iota
	// Found carries a URL the model claims to have verified.
	Found
	// NotFound is the explicit "no source" sentinel.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "unstructured"
	}
}

// Answer is an interpreted search response.
type Answer struct {
	Outcome Outcome
	URL     string
	Title   string
	Raw     string
}

// contract mirrors the JSON object requested from the model. Pointer fields
// distinguish absent keys from zero values.
type contract struct {
	URL      *string `json:"url"`
	Title    string  `json:"title"`
	Verified *bool   `json:"verified"`
}

// objectRe finds flat JSON objects; the contract has no nesting.
var objectRe = regexp.MustCompile(`\{[^{}]*\}`)

// ParseAnswer interprets raw against the contract. The first object that
// carries both "url" and "verified" decides the outcome.
func ParseAnswer(raw string) Answer {
	ans := Answer{Raw: raw}
	for _, obj := range objectRe.FindAllString(raw, -1) {
		var c contract
		if err := json.Unmarshal([]byte(obj), &c); err != nil {
			continue
		}
		if c.URL == nil || c.Verified == nil {
			continue
		}

		url := strings.TrimSpace(*c.URL)
		switch {
		case *c.Verified && url != "":
			ans.Outcome = Found
			ans.URL = url
			ans.Title = strings.TrimSpace(c.Title)
		case !*c.Verified && url == "":
			ans.Outcome = NotFound
		}
		return ans
	}
	return ans
}

var (
	urlTokenRe = regexp.MustCompile(`https?://[^\s)\]>"']+`)
	titleRe    = regexp.MustCompile(`(?i)(?:title|meta)[:\s]+["']?([^"'\n]{10,80})["']?`)
)

// ScrapeURLs returns the distinct URL tokens in raw, in order of appearance,
// with trailing punctuation removed.
func ScrapeURLs(raw string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, tok := range urlTokenRe.FindAllString(raw, -1) {
		u := strings.TrimRight(tok, ".,;:!?)")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// TitleNear looks for a "title: ..." label in the 200 characters before url
// in raw. It returns "" when there is none.
func TitleNear(raw, url string) string {
	i := strings.Index(raw, url)
	if i <= 0 {
		return ""
	}
	start := i - 200
	if start < 0 {
		start = 0
	}
	m := titleRe.FindStringSubmatch(raw[start:i])
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
