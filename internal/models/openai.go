package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// newHTTPClient builds the pooled transport shared by the adapters. No
// client-level timeout: the caller's context bounds each call.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// OpenAIClient talks to the OpenAI chat-completions API and compatible
// endpoints (DeepSeek, Qwen, local gateways).
type OpenAIClient struct {
	name     string
	baseURL  string
	apiKey   string
	defaults Options
	retry    RetryPolicy
	httpc    *http.Client
}

// NewOpenAIClient builds an adapter for one model name. An empty baseURL
// targets the official API.
func NewOpenAIClient(name, baseURL, apiKey string, defaults Options) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		defaults: defaults,
		retry:    DefaultRetryPolicy(),
		httpc:    newHTTPClient(),
	}
}

func (c *OpenAIClient) Name() string { return c.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends one chat completion and returns the reply text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts *Options) (string, error) {
	merged := mergeOptions(c.defaults, opts)

	var messages []chatMessage
	if merged.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: merged.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.name,
		Messages:    messages,
		Temperature: merged.Temperature,
		MaxTokens:   merged.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var out chatResponse
	err = c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return doJSON(c.httpc, req, &out)
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai generate: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

// doJSON executes a request and decodes a 2xx JSON body into out; non-2xx
// becomes an *APIError carrying a truncated body.
func doJSON(httpc *http.Client, req *http.Request, out any) error {
	resp, err := httpc.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mergeOptions(defaults Options, opts *Options) Options {
	merged := defaults
	if opts == nil {
		return merged
	}
	if opts.SystemPrompt != "" {
		merged.SystemPrompt = opts.SystemPrompt
	}
	if opts.Temperature != 0 {
		merged.Temperature = opts.Temperature
	}
	if opts.MaxTokens != 0 {
		merged.MaxTokens = opts.MaxTokens
	}
	return merged
}
