// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assist

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// openAIBaseURL overrides the OpenAI endpoint when set. Package-level var
// for test substitution.
var openAIBaseURL = ""

const searchSystemPrompt = "You are a research assistant with live web search. Answer only with the JSON object requested."

// OpenAISearcher calls a search-capable OpenAI chat model.
type OpenAISearcher struct {
	client *openai.Client
	model  string
}

// NewOpenAISearcher creates a searcher for model. A nil httpClient uses the
// library default.
func NewOpenAISearcher(apiKey, model string, httpClient *http.Client) *OpenAISearcher {
	cfg := openai.DefaultConfig(apiKey)
	if openAIBaseURL != "" {
		cfg.BaseURL = openAIBaseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAISearcher{client: openai.NewClientWithConfig(cfg), model: model}
}

// Name identifies the backend in metrics.
func (o *OpenAISearcher) Name() string { return "openai" }

// Search sends prompt as a single user turn and returns the first choice.
func (o *OpenAISearcher) Search(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: searchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
