package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfig = `
providers:
  openai:
    type: openai
    api_key_env: OPENAI_API_KEY
  zenmux:
    type: openai_compatible
    base_url: https://zenmux.ai/api/v1
    api_key_env: ZENMUX_API_KEY
  anthropic:
    type: anthropic
    api_key_env: ANTHROPIC_API_KEY
  broken:
    type: carrier-pigeon

models:
  - name: gpt-4o-mini
    provider: openai
    temperature: 0.1
  - name: deepseek-chat
    provider: zenmux
    max_tokens: 2048
  - name: claude-sonnet
    provider: anthropic
  - name: odd-one
    provider: broken
  - name: orphan
    provider: missing
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	r, err := LoadRegistry(writeConfig(t))
	require.NoError(t, err)
	require.Equal(t, []string{"gpt-4o-mini", "deepseek-chat", "claude-sonnet", "odd-one", "orphan"}, r.List())
}

func TestLoadRegistryMissingFile(t *testing.T) {
	r, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Empty(t, r.List())
}

func TestLoadRegistryBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: [unclosed"), 0o644))
	_, err := LoadRegistry(path)
	require.Error(t, err)
}

func TestRegistryGet(t *testing.T) {
	r, err := LoadRegistry(writeConfig(t))
	require.NoError(t, err)

	c, err := r.Get("gpt-4o-mini")
	require.NoError(t, err)
	require.IsType(t, &OpenAIClient{}, c)
	require.Equal(t, "gpt-4o-mini", c.Name())

	c, err = r.Get("deepseek-chat")
	require.NoError(t, err)
	require.IsType(t, &OpenAIClient{}, c)

	c, err = r.Get("claude-sonnet")
	require.NoError(t, err)
	require.IsType(t, &AnthropicClient{}, c)

	_, err = r.Get("odd-one")
	require.ErrorContains(t, err, "unsupported provider type")

	_, err = r.Get("orphan")
	require.ErrorContains(t, err, "unknown provider")
}

func TestRegistryGetUnconfiguredFallsBack(t *testing.T) {
	r, err := LoadRegistry(writeConfig(t))
	require.NoError(t, err)

	c, err := r.Get("totally-new-model")
	require.NoError(t, err)
	require.IsType(t, &OpenAIClient{}, c)
	require.Equal(t, "totally-new-model", c.Name())
}
