package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvOr(t *testing.T) {
	t.Setenv("FATHOM_TEST_KEY", "set")
	if got := envOr("FATHOM_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("Expected 'set', got '%s'", got)
	}
	if got := envOr("FATHOM_TEST_KEY_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Expected 'fallback', got '%s'", got)
	}
}

func TestLoadFromFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
tool_servers:
  - id: weather
    name: Weather
    description: Weather lookups.
    command: npx
    args: ["-y", "some-weather-server"]
exclude_paths:
  - "**/node_modules"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg := &Config{OllamaModel: "llama4"}
	if err := loadFromFile(path, cfg); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	// Env-sourced fields are untouched by the overlay.
	if cfg.OllamaModel != "llama4" {
		t.Errorf("Expected OllamaModel to survive overlay, got '%s'", cfg.OllamaModel)
	}
	if len(cfg.ToolServers) != 1 || cfg.ToolServers[0].ID != "weather" {
		t.Fatalf("Expected one 'weather' tool server, got %+v", cfg.ToolServers)
	}
	if cfg.ToolServers[0].RequiresContextPaths {
		t.Error("requires_context_paths should default to false")
	}
	if len(cfg.ExcludePaths) != 1 || cfg.ExcludePaths[0] != "**/node_modules" {
		t.Errorf("Unexpected exclude paths: %v", cfg.ExcludePaths)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("OLLAMA_MODEL", "")
	t.Setenv("CLAUDE_API_KEY", "")

	// Run from an empty directory so no project overlay or .env applies.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OllamaBaseURL != DefaultOllamaBaseURL {
		t.Errorf("Expected default base URL, got '%s'", cfg.OllamaBaseURL)
	}
	if cfg.OllamaModel != DefaultOllamaModel {
		t.Errorf("Expected default model, got '%s'", cfg.OllamaModel)
	}
	if cfg.ClaudeAPIKey != "" {
		t.Errorf("Expected empty credential by default, got '%s'", cfg.ClaudeAPIKey)
	}
}
