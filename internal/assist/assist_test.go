// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      Outcome
		wantURL   string
		wantTitle string
	}{
		{
			name:      "verified object",
			raw:       `{"url": "https://www.nist.gov/ai", "title": "NIST AI", "verified": true}`,
			want:      Found,
			wantURL:   "https://www.nist.gov/ai",
			wantTitle: "NIST AI",
		},
		{
			name:      "object inside prose and code fence",
			raw:       "Here is what I found:\n```json\n{\"verified\": true, \"url\": \" https://hbr.org/x \", \"title\": \"HBR\"}\n```",
			want:      Found,
			wantURL:   "https://hbr.org/x",
			wantTitle: "HBR",
		},
		{
			name: "not found sentinel",
			raw:  `I could not find anything. {"url": "", "verified": false}`,
			want: NotFound,
		},
		{
			name: "unverified url falls back to scraping",
			raw:  `{"url": "https://maybe.example/x", "verified": false}`,
			want: Unstructured,
		},
		{
			name:    "objects without contract keys are skipped",
			raw:     `{"note": "see below"} {"url": "https://who.int/a", "verified": true}`,
			want:    Found,
			wantURL: "https://who.int/a",
		},
		{
			name: "malformed json",
			raw:  `{"url": "https://x.example", verified: yes}`,
			want: Unstructured,
		},
		{
			name: "plain text",
			raw:  "Try https://www.census.gov/data for statistics.",
			want: Unstructured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnswer(tt.raw)
			assert.Equal(t, tt.want, got.Outcome)
			assert.Equal(t, tt.wantURL, got.URL)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestScrapeURLs(t *testing.T) {
	raw := `Sources: https://www.census.gov/data. Also (https://www.brookings.edu/research)
and "https://www.census.gov/data" again, plus <https://hbr.org/2024/01/x>!`

	assert.Equal(t, []string{
		"https://www.census.gov/data",
		"https://www.brookings.edu/research",
		"https://hbr.org/2024/01/x",
	}, ScrapeURLs(raw))

	assert.Empty(t, ScrapeURLs("no links here"))
}

func TestTitleNear(t *testing.T) {
	raw := `Title: "Global Manufacturing Outlook 2025" https://www.industryweek.com/outlook`
	assert.Equal(t, "Global Manufacturing Outlook 2025", TitleNear(raw, "https://www.industryweek.com/outlook"))
	assert.Equal(t, "", TitleNear("https://a.example/x", "https://a.example/x"))
	assert.Equal(t, "", TitleNear("nothing", "https://a.example/x"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "unstructured", Unstructured.String())
}
