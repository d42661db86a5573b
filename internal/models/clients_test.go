package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAIClientGenerate(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "乙亥 甲申 癸巳 丁巳"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-model", srv.URL, "test-key", Options{Temperature: 0.2})
	out, err := c.Generate(context.Background(), "请排八字", &Options{SystemPrompt: "你是命理专家"})
	require.NoError(t, err)
	require.Equal(t, "乙亥 甲申 癸巳 丁巳", out)

	require.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	require.Equal(t, "system", gotReq.Messages[0].Role)
	require.Equal(t, "请排八字", gotReq.Messages[1].Content)
	require.InDelta(t, 0.2, gotReq.Temperature, 1e-9)
}

func TestOpenAIClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-model", srv.URL, "", Options{})
	c.retry.BaseDelay = 0

	out, err := c.Generate(context.Background(), "hi", nil)
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Equal(t, int32(2), calls.Load())
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-model", srv.URL, "", Options{})
	_, err := c.Generate(context.Background(), "hi", nil)
	require.ErrorContains(t, err, "empty choices")
}

func TestOpenAIClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-model", srv.URL, "bad", Options{})
	_, err := c.Generate(context.Background(), "hi", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Contains(t, apiErr.Body, "invalid api key")
}

func TestAnthropicClientGenerate(t *testing.T) {
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "回答"}},
		})
	}))
	defer srv.Close()

	c := NewAnthropicClient("test-claude", srv.URL, "test-key", Options{})
	out, err := c.Generate(context.Background(), "请排八字", nil)
	require.NoError(t, err)
	require.Equal(t, "回答", out)

	require.Equal(t, "test-claude", gotReq.Model)
	require.Equal(t, defaultAnthropicTokens, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	require.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestMergeOptions(t *testing.T) {
	defaults := Options{SystemPrompt: "a", Temperature: 0.3, MaxTokens: 100}

	merged := mergeOptions(defaults, nil)
	require.Equal(t, defaults, merged)

	merged = mergeOptions(defaults, &Options{Temperature: 0.9})
	require.Equal(t, "a", merged.SystemPrompt)
	require.InDelta(t, 0.9, merged.Temperature, 1e-9)
	require.Equal(t, 100, merged.MaxTokens)
}
