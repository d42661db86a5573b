// Package models provides the model-client capability interface and the
// HTTP adapters behind it. Retry and backoff live entirely at this
// boundary; callers only see Generate succeed or fail.
package models

import "context"

// Options are per-call generation parameters. Zero values fall back to the
// client's configured defaults.
type Options struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Client is the capability every model adapter provides. Generate returns
// the model's text reply or an error on transport/auth/decoding failure.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts *Options) (string, error)
}
