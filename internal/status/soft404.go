// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package status

import (
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// notFoundTitles are <title> fragments of pages that report a missing
// resource with status 200.
var notFoundTitles = []string{
	"404",
	"page not found",
	"not found",
	"page does not exist",
	"page cannot be found",
}

// softNotFound reports whether an HTML response body is a not-found page.
// Non-HTML bodies and unparseable documents are not flagged.
func softNotFound(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "html") {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false
	}
	return IsNotFoundTitle(doc.Find("title").First().Text())
}

// IsNotFoundTitle reports whether a page title announces a missing page.
func IsNotFoundTitle(title string) bool {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return false
	}
	for _, t := range notFoundTitles {
		if strings.Contains(title, t) {
			return true
		}
	}
	return false
}
