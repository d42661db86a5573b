package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProviderConfig describes one API endpoint family in models.yaml.
type ProviderConfig struct {
	Type      string `yaml:"type"` // openai | openai_compatible | anthropic
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// ModelConfig binds a model name to a provider plus generation defaults.
type ModelConfig struct {
	Name        string  `yaml:"name"`
	Provider    string  `yaml:"provider"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// RegistryConfig is the models.yaml document.
type RegistryConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
	Models    []ModelConfig             `yaml:"models"`
}

// Registry resolves model names to clients from a YAML configuration.
type Registry struct {
	cfg RegistryConfig
}

// LoadRegistry reads a models.yaml file. A missing file yields an empty
// registry where every lookup falls back to an OpenAI-compatible default.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read model config: %w", err)
	}
	var cfg RegistryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse model config: %w", err)
	}
	return &Registry{cfg: cfg}, nil
}

// Get builds a client for the named model. Names absent from the config
// default to the official OpenAI endpoint with OPENAI_* env credentials.
func (r *Registry) Get(name string) (Client, error) {
	for _, m := range r.cfg.Models {
		if m.Name != name {
			continue
		}
		provider, ok := r.cfg.Providers[m.Provider]
		if !ok {
			return nil, fmt.Errorf("model %q references unknown provider %q", name, m.Provider)
		}
		apiKey := ""
		if provider.APIKeyEnv != "" {
			apiKey = os.Getenv(provider.APIKeyEnv)
		}
		defaults := Options{Temperature: m.Temperature, MaxTokens: m.MaxTokens}

		switch provider.Type {
		case "openai", "openai_compatible", "":
			return NewOpenAIClient(name, provider.BaseURL, apiKey, defaults), nil
		case "anthropic":
			return NewAnthropicClient(name, provider.BaseURL, apiKey, defaults), nil
		default:
			return nil, fmt.Errorf("unsupported provider type %q", provider.Type)
		}
	}
	return NewOpenAIClient(name, os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_API_KEY"), Options{}), nil
}

// List returns the configured model names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.cfg.Models))
	for _, m := range r.cfg.Models {
		names = append(names, m.Name)
	}
	return names
}
