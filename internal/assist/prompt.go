// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assist

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/citecheck/pkg/types"
)

var alternativePromptTmpl = template.Must(template.New("alternative").Parse(`Use web search to find ONE authoritative source about: {{.Query}}

Prioritize: .edu .gov .org and major publications (Forbes, McKinsey, Harvard Business Review, Nature, WHO, etc.)

Return ONLY JSON:
{"url": "https://authority-site.com/article", "title": "Article Title", "verified": true}

AVOID:
- {{if .OwnDomain}}{{.OwnDomain}}{{else}}company sites{{end}}
- Competitors: {{if .Competitors}}{{.Competitors}}{{else}}none{{end}}
- Social media, forums, personal blogs

If no authority source found: {"url": "", "verified": false}`))

var specificPagePromptTmpl = template.Must(template.New("specific").Parse(`Use web search to find a specific page URL on {{.Domain}} about: {{.Title}}

Search query: {{.Title}} site:{{.Domain}}

Return ONLY a JSON object with:
{"url": "https://{{.Domain}}/specific-page-path", "title": "Page Title", "verified": true}

Requirements:
- Must be a specific page URL (not homepage)
- Must be on {{.Domain}}
- Must be relevant to: {{.Title}}
- Must be an authoritative source

If no specific page found: {"url": "", "verified": false}`))

// maxPromptCompetitors limits how many competitors are named in a prompt.
const maxPromptCompetitors = 2

// AlternativePrompt renders the request for one authoritative source on query.
func AlternativePrompt(query string, ex types.Exclusion) string {
	competitors := ex.Competitors
	if len(competitors) > maxPromptCompetitors {
		competitors = competitors[:maxPromptCompetitors]
	}
	return render(alternativePromptTmpl, struct {
		Query       string
		OwnDomain   string
		Competitors string
	}{query, ex.OwnDomain, strings.Join(competitors, ", ")})
}

// SpecificPagePrompt renders the request for a deep page on domain.
func SpecificPagePrompt(domain, title string) string {
	return render(specificPagePromptTmpl, struct {
		Domain string
		Title  string
	}{domain, title})
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	// The templates only reference fields that exist, so Execute cannot fail.
	if err := t.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}
