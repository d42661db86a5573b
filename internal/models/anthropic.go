package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	defaultAnthropicTokens  = 1024
)

// AnthropicClient talks to the Anthropic messages API.
type AnthropicClient struct {
	name     string
	baseURL  string
	apiKey   string
	defaults Options
	retry    RetryPolicy
	httpc    *http.Client
}

// NewAnthropicClient builds an adapter for one model name.
func NewAnthropicClient(name, baseURL, apiKey string, defaults Options) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicClient{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		defaults: defaults,
		retry:    DefaultRetryPolicy(),
		httpc:    newHTTPClient(),
	}
}

func (c *AnthropicClient) Name() string { return c.name }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Generate sends one messages call and returns the reply text.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, opts *Options) (string, error) {
	merged := mergeOptions(c.defaults, opts)
	if merged.MaxTokens == 0 {
		merged.MaxTokens = defaultAnthropicTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       c.name,
		MaxTokens:   merged.MaxTokens,
		System:      merged.SystemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: merged.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal messages request: %w", err)
	}

	var out anthropicResponse
	err = c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)
		return doJSON(c.httpc, req, &out)
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}
	if len(out.Content) == 0 {
		return "", fmt.Errorf("anthropic generate: empty content")
	}
	return out.Content[0].Text, nil
}
