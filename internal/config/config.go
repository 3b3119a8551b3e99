// Package config manages the sift configuration file and its environment
// fallbacks.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Environment variable fallbacks for credentials that should not have to
// live in the config file.
const (
	EnvBraintrustAPIKey = "BRAINTRUST_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
)

// Config represents the flat sift configuration
type Config struct {
	Version string `json:"version"`

	// ReviewerID stamps annotations made from this machine.
	ReviewerID string `json:"reviewer_id,omitempty"`

	// Braintrust sync settings. The API key may also come from the
	// BRAINTRUST_API_KEY environment variable.
	BraintrustAPIKey  string `json:"braintrust_api_key,omitempty"`
	BraintrustBaseURL string `json:"braintrust_base_url,omitempty"`
	ProjectID         string `json:"project_id,omitempty"`
	ExperimentID      string `json:"experiment_id,omitempty"`

	// OpenAI settings for prompt improvement. The API key may also come
	// from the OPENAI_API_KEY environment variable.
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`
	OpenAIModel  string `json:"openai_model,omitempty"`
}

// configPath returns the path of the config file under the home directory.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sift", "config.json"), nil
}

// Load reads the config file. A missing file yields an empty config rather
// than an error; every field has a working zero value.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{Version: "1"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Save writes the config file, creating the .sift directory if needed
func Save(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create .sift dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ResolveBraintrustKey returns the configured Braintrust API key, falling
// back to the environment.
func (c *Config) ResolveBraintrustKey() string {
	if c.BraintrustAPIKey != "" {
		return c.BraintrustAPIKey
	}
	return os.Getenv(EnvBraintrustAPIKey)
}

// ResolveOpenAIKey returns the configured OpenAI API key, falling back to
// the environment.
func (c *Config) ResolveOpenAIKey() string {
	if c.OpenAIAPIKey != "" {
		return c.OpenAIAPIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// ResolveReviewerID returns the configured reviewer id, defaulting to the
// OS username.
func (c *Config) ResolveReviewerID() string {
	if c.ReviewerID != "" {
		return c.ReviewerID
	}
	return os.Getenv("USER")
}
