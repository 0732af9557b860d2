// Package config assembles process configuration from the environment (with
// an optional .env file) and from layered .fathom/config.yaml overlays.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kwhittle/fathom/errors"
	"gopkg.in/yaml.v3"
)

// Defaults for the local provider, matching a stock Ollama install.
const (
	DefaultOllamaBaseURL = "http://127.0.0.1:11434/"
	DefaultOllamaModel   = "llama4"

	DefaultClaudeModel  = "claude-3-5-sonnet-20241022"
	DefaultGeminiModel  = "gemini-1.5-pro"
	DefaultBedrockModel = "anthropic.claude-3-5-sonnet-20241022-v2:0"
)

// ToolServer describes an additional tool server declared in a config file.
// Entries are appended to the builtin catalog in file order.
type ToolServer struct {
	ID                   string   `yaml:"id"`
	Name                 string   `yaml:"name"`
	Description          string   `yaml:"description"`
	Command              string   `yaml:"command"`
	Args                 []string `yaml:"args"`
	RequiresContextPaths bool     `yaml:"requires_context_paths"`
}

// Config holds everything read once at process start. Environment-sourced
// fields are not part of the YAML overlay.
type Config struct {
	OllamaBaseURL string `yaml:"-"`
	OllamaModel   string `yaml:"-"`
	ClaudeAPIKey  string `yaml:"-"`
	ClaudeModel   string `yaml:"-"`
	GeminiAPIKey  string `yaml:"-"`
	GeminiModel   string `yaml:"-"`
	BedrockModel  string `yaml:"-"`

	ToolServers  []ToolServer `yaml:"tool_servers"`
	ExcludePaths []string     `yaml:"exclude_paths"`
}

// Load reads the environment (after loading a .env file when one exists in
// the working directory) and then applies the user-level and project-level
// YAML overlays, with the latter taking precedence.
func Load() (*Config, error) {
	// A missing .env file is not an error; plain env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		OllamaBaseURL: envOr("OLLAMA_BASE_URL", DefaultOllamaBaseURL),
		OllamaModel:   envOr("OLLAMA_MODEL", DefaultOllamaModel),
		ClaudeAPIKey:  os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:   envOr("CLAUDE_MODEL", DefaultClaudeModel),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", DefaultGeminiModel),
		BedrockModel:  envOr("BEDROCK_MODEL_ID", DefaultBedrockModel),
	}

	// User-level overlay first.
	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ".fathom", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			if err := loadFromFile(userPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	// Project-level overlay, overriding user-level.
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	projectPath := filepath.Join(wd, ".fathom", "config.yaml")
	if _, err := os.Stat(projectPath); err == nil {
		if err := loadFromFile(projectPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal overwrites fields present in the YAML, which gives a simple
	// merge where project-level config replaces user-level.
	return yaml.Unmarshal(data, cfg)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
