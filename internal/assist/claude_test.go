// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClaudeServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(h)
	old := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() {
		claudeAPIURL = old
		ts.Close()
	})
}

func TestClaudeSearcher_Search(t *testing.T) {
	var got claudeRequest
	withClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, claudeAPIVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [
			{"type": "text", "text": "Searching. "},
			{"type": "server_tool_use", "id": "srvtoolu_1", "name": "web_search"},
			{"type": "web_search_tool_result", "tool_use_id": "srvtoolu_1"},
			{"type": "text", "text": "{\"url\": \"https://www.who.int/x\", \"verified\": true}"}
		], "stop_reason": "end_turn"}`))
	})

	s := &ClaudeSearcher{APIKey: "test-key", Model: "test-model", MaxUses: 2}
	out, err := s.Search(context.Background(), "find a source")
	require.NoError(t, err)

	assert.Equal(t, `Searching. {"url": "https://www.who.int/x", "verified": true}`, out)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, webSearchToolType, got.Tools[0].Type)
	assert.Equal(t, 2, got.Tools[0].MaxUses)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "find a source", got.Messages[0].Content)
}

func TestClaudeSearcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusBadRequest, `{"error": "bad"}`, "Claude API returned 400"},
		{"no text blocks", http.StatusOK, `{"content": [{"type": "server_tool_use"}]}`, ErrEmptyResponse.Error()},
		{"bad json", http.StatusOK, `not json`, "decoding Claude response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			s := &ClaudeSearcher{APIKey: "k", Model: "m"}
			_, err := s.Search(context.Background(), "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
