// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package authority

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citecheck/pkg/types"
)

func TestTableMatch(t *testing.T) {
	table := NewTable(DefaultTopics)

	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"Quarterly revenue growth for SaaS", "business", true},
		{"Machine Learning in radiology", "technology", true},
		{"Patient outcomes after treatment", "healthcare", true},
		{"Factory floor production targets", "manufacturing", true},
		{"Advertising spend benchmarks", "marketing", true},
		{"Survey statistics 2024", "research", true},
		// "automation" is declared by technology first.
		{"Automation trends", "technology", true},
		// Both business and research keywords: business is declared first.
		{"Market research report", "business", true},
		{"Poetry of the Romantic era", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := table.Match(tt.query)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestTableMatchConcurrent(t *testing.T) {
	table := NewTable(DefaultTopics)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok := table.Match("clinical trial data")
			assert.True(t, ok)
			assert.Equal(t, "healthcare", got.Name)
		}()
	}
	wg.Wait()
}

// fakeStatus marks URLs in up as reachable and counts calls.
type fakeStatus struct {
	mu    sync.Mutex
	up    map[string]bool
	calls []string
}

func (f *fakeStatus) Check(_ context.Context, url string) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	return f.up[url], url
}

func testTopics() []Topic {
	return []Topic{{
		Name:     "health",
		Keywords: []string{"health"},
		Sources: []Source{
			{"https://www.who.int/", "WHO"},
			{"https://www.nih.gov/", "NIH"},
		},
	}}
}

func TestFallbackLookup(t *testing.T) {
	status := &fakeStatus{up: map[string]bool{"https://www.nih.gov/": true}}
	fb := NewFallback(NewTable(testTopics()), status, time.Minute, nil, nil)

	alt, ok := fb.Lookup(context.Background(), "Public health spending", types.Exclusion{})
	require.True(t, ok)
	assert.Equal(t, "https://www.nih.gov/", alt.URL)
	assert.Equal(t, "Public health spending - NIH", alt.Title)
	assert.Equal(t, []string{"https://www.who.int/", "https://www.nih.gov/"}, status.calls)

	// Cached: no further probes.
	alt2, ok := fb.Lookup(context.Background(), "Public health spending", types.Exclusion{})
	require.True(t, ok)
	assert.Equal(t, alt, alt2)
	assert.Len(t, status.calls, 2)

	cached, ok := fb.Cached("Public health spending", types.Exclusion{})
	require.True(t, ok)
	assert.Equal(t, alt, cached)
}

func TestFallbackSkipsExcludedSources(t *testing.T) {
	status := &fakeStatus{up: map[string]bool{"https://www.who.int/": true, "https://www.nih.gov/": true}}
	fb := NewFallback(NewTable(testTopics()), status, time.Minute, nil, nil)

	alt, ok := fb.Lookup(context.Background(), "health", types.Exclusion{Competitors: []string{"who.int"}})
	require.True(t, ok)
	assert.Equal(t, "https://www.nih.gov/", alt.URL)
	assert.Equal(t, []string{"https://www.nih.gov/"}, status.calls)
}

func TestFallbackCachedRespectsExclusion(t *testing.T) {
	status := &fakeStatus{up: map[string]bool{"https://www.who.int/": true}}
	fb := NewFallback(NewTable(testTopics()), status, time.Minute, nil, nil)

	_, ok := fb.Lookup(context.Background(), "health", types.Exclusion{})
	require.True(t, ok)

	_, ok = fb.Cached("health", types.Exclusion{OwnDomain: "who.int"})
	assert.False(t, ok)
}

func TestFallbackCachesNegative(t *testing.T) {
	status := &fakeStatus{up: map[string]bool{}}
	fb := NewFallback(NewTable(testTopics()), status, time.Minute, nil, nil)

	_, ok := fb.Lookup(context.Background(), "health", types.Exclusion{})
	assert.False(t, ok)
	_, ok = fb.Lookup(context.Background(), "health", types.Exclusion{})
	assert.False(t, ok)

	assert.Len(t, status.calls, 2, "second lookup served from the negative cache")
	_, ok = fb.Cached("health", types.Exclusion{})
	assert.False(t, ok)
}

func TestFallbackNoTopic(t *testing.T) {
	status := &fakeStatus{}
	fb := NewFallback(NewTable(testTopics()), status, time.Minute, nil, nil)

	_, ok := fb.Lookup(context.Background(), "medieval poetry", types.Exclusion{})
	assert.False(t, ok)
	assert.Empty(t, status.calls)
}

func TestFallbackCanceledIsNotCached(t *testing.T) {
	status := &fakeStatus{up: map[string]bool{"https://www.who.int/": true}}
	fb := NewFallback(NewTable(testTopics()), status, time.Minute, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := fb.Lookup(ctx, "health", types.Exclusion{})
	assert.False(t, ok)

	_, ok = fb.Lookup(context.Background(), "health", types.Exclusion{})
	assert.True(t, ok)
}

func TestCacheKeyTruncates(t *testing.T) {
	long := strings.Repeat("é", 150)
	assert.Equal(t, 100, len([]rune(cacheKey(long))))
	assert.Equal(t, "short", cacheKey("short"))
}
