// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns a freeform sources block into numbered citations.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/citecheck/pkg/types"
)

var (
	// primaryRe matches "[n]: <url> <sep> <title>". The separator needs
	// whitespace on both sides so hyphens inside URLs are kept.
	primaryRe = regexp.MustCompile(`^\[(\d+)\]:\s*(https?://\S+?)(?:\s+[–—-]\s+|\s+)(.+)$`)

	// looseRe matches "[n]: <anything>".
	looseRe = regexp.MustCompile(`^\[(\d+)\]:\s*(.+)$`)

	// embeddedURLRe finds a URL token inside free text.
	embeddedURLRe = regexp.MustCompile(`https?://[^\s)\]}>]+`)

	// urlWithSepRe removes URL tokens and the separator that follows them.
	urlWithSepRe = regexp.MustCompile(`https?://\S+\s*[–—-]?\s*`)

	// edgeSepRe trims a dash separator left at either end of a title.
	edgeSepRe = regexp.MustCompile(`^[\s–—-]+|[\s–—-]+$`)
)

const trailingPunct = ".,;:!?)"

// Sources parses text line by line and returns the citations in input order,
// renumbered from 1. Lines that carry no usable absolute URL are skipped.
func Sources(text string) []types.Citation {
	var citations []types.Citation
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c, ok := Line(line)
		if !ok {
			continue
		}
		citations = append(citations, c)
	}

	for i := range citations {
		citations[i].Number = i + 1
	}
	return citations
}

// Line parses a single source line. The returned Number is the one written
// in the line; Sources renumbers it.
func Line(line string) (types.Citation, bool) {
	if m := primaryRe.FindStringSubmatch(line); m != nil {
		url := strings.TrimRight(m[2], trailingPunct)
		title := strings.TrimSpace(m[3])
		return build(m[1], url, title)
	}

	m := looseRe.FindStringSubmatch(line)
	if m == nil {
		return types.Citation{}, false
	}
	content := strings.TrimSpace(m[2])
	if strings.HasPrefix(content, "/") {
		return types.Citation{}, false
	}

	loc := embeddedURLRe.FindStringIndex(content)
	if loc == nil {
		return types.Citation{}, false
	}
	url := strings.TrimRight(content[loc[0]:loc[1]], trailingPunct)

	title := edgeSepRe.ReplaceAllString(urlWithSepRe.ReplaceAllString(content, ""), "")
	if title == "" {
		title = url
	}
	return build(m[1], url, title)
}

func build(num, url, title string) (types.Citation, bool) {
	if url == "" || strings.HasPrefix(url, "/") {
		return types.Citation{}, false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return types.Citation{}, false
	}
	return types.Citation{Number: n, URL: url, Title: title}, true
}
