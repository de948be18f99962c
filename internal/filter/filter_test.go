// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/citecheck/pkg/types"
)

func TestShouldFilter(t *testing.T) {
	acme := types.Exclusion{OwnDomain: "acme.com"}

	tests := []struct {
		name string
		url  string
		ex   types.Exclusion
		want bool
	}{
		{"subdomain of own domain", "https://blog.acme.com/x", acme, true},
		{"own domain with www", "https://www.acme.com/", acme, true},
		{"substring is not a match", "https://notacme.com", acme, false},
		{"own domain given as url", "https://acme.com/about", types.Exclusion{OwnDomain: "https://www.acme.com"}, true},
		{"competitor without scheme", "https://rival.io/pricing", types.Exclusion{Competitors: []string{"rival.io"}}, true},
		{"competitor subdomain", "http://docs.rival.io", types.Exclusion{Competitors: []string{"https://rival.io"}}, true},
		{"forbidden host always applies", "https://vertexaisearch.cloud.google.com/grounding", types.Exclusion{}, true},
		{"forbidden host subdomain", "https://console.cloud.google.com/", types.Exclusion{}, true},
		{"extra forbidden host", "https://spam.example/", types.Exclusion{ForbiddenHosts: []string{"spam.example"}}, true},
		{"host case and port ignored", "https://BLOG.ACME.COM:8443/x", acme, true},
		{"unrelated host", "https://nist.gov/ai", acme, false},
		{"malformed url fails open", "not a url", acme, false},
		{"broken escape fails open", "https://%zz", acme, false},
		{"empty exclusion set", "https://example.com", types.Exclusion{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldFilter(tt.url, tt.ex))
		})
	}
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeHost("WWW.Example.com"))
	assert.Equal(t, "example.com", NormalizeHost("www.example.com:443"))
	assert.Equal(t, "wwwexample.com", NormalizeHost("wwwexample.com"))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com/page", "https://example.com/page"},
		{"http://example.com/page", "http://example.com/page"},
		{"https://example.com/a?utm_source=x&id=7&gclid=abc", "https://example.com/a?id=7"},
		{"https://example.com/a?fbclid=1#section", "https://example.com/a"},
		{"  https://example.com  ", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}
