package provider

import (
	"testing"

	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/errors"
)

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"ollama", "claude", "gemini", "bedrock"} {
		kind, err := ParseKind(valid)
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", valid, err)
		}
		if string(kind) != valid {
			t.Errorf("ParseKind(%q) = %q", valid, kind)
		}
	}
	if _, err := ParseKind("gpt5"); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://127.0.0.1:11434", "http://127.0.0.1:11434/v1"},
		{"http://127.0.0.1:11434/", "http://127.0.0.1:11434/v1"},
		{"http://127.0.0.1:11434///", "http://127.0.0.1:11434/v1"},
		{"http://127.0.0.1:11434/v1", "http://127.0.0.1:11434/v1"},
		{"http://ollama.local:8080", "http://ollama.local:8080/v1"},
	}
	for _, c := range cases {
		if got := normalizeBaseURL(c.in); got != c.want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestOllamaHandleRequiresEndpointAndModel(t *testing.T) {
	var confErr *ConfigurationError

	_, err := newOllamaHandle(&config.Config{OllamaModel: "llama4"})
	if !errors.As(err, &confErr) {
		t.Fatalf("Expected ConfigurationError for empty endpoint, got %v", err)
	}

	_, err = newOllamaHandle(&config.Config{OllamaBaseURL: config.DefaultOllamaBaseURL})
	if !errors.As(err, &confErr) {
		t.Fatalf("Expected ConfigurationError for empty model, got %v", err)
	}

	// A present endpoint and model always resolve; liveness is not checked.
	h, err := newOllamaHandle(&config.Config{
		OllamaBaseURL: "http://127.0.0.1:11434",
		OllamaModel:   "llama4",
	})
	if err != nil {
		t.Fatalf("Expected local handle to resolve, got %v", err)
	}
	if h == nil {
		t.Fatal("Expected a handle")
	}
}

func TestClaudeHandleRejectsPlaceholderKey(t *testing.T) {
	var confErr *ConfigurationError

	// The documented placeholder from the example configuration.
	_, err := newClaudeHandle(&config.Config{ClaudeAPIKey: "sk...xxx", ClaudeModel: config.DefaultClaudeModel})
	if !errors.As(err, &confErr) {
		t.Fatalf("Expected ConfigurationError for placeholder key, got %v", err)
	}
	if confErr.Kind != KindClaude {
		t.Errorf("Expected claude kind, got %s", confErr.Kind)
	}

	_, err = newClaudeHandle(&config.Config{ClaudeAPIKey: ""})
	if !errors.As(err, &confErr) {
		t.Fatalf("Expected ConfigurationError for empty key, got %v", err)
	}

	_, err = newClaudeHandle(&config.Config{ClaudeAPIKey: "sk-proj-notclaude"})
	if !errors.As(err, &confErr) {
		t.Fatalf("Expected ConfigurationError for wrong prefix, got %v", err)
	}

	// A well-formed key resolves without any network call.
	h, err := newClaudeHandle(&config.Config{
		ClaudeAPIKey: "sk-ant-valid-key",
		ClaudeModel:  config.DefaultClaudeModel,
	})
	if err != nil {
		t.Fatalf("Expected handle for well-formed key, got %v", err)
	}
	if h == nil {
		t.Fatal("Expected a handle")
	}
}

func TestGeminiHandleRequiresKey(t *testing.T) {
	_, err := newGeminiHandle(t.Context(), &config.Config{GeminiModel: config.DefaultGeminiModel})
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("Expected ConfigurationError for missing key, got %v", err)
	}
}

func TestUsageAccumulation(t *testing.T) {
	var total Usage
	total.Add(Usage{InputTokens: 10, OutputTokens: 5})
	total.Add(Usage{InputTokens: 7, OutputTokens: 3})
	if total.InputTokens != 17 || total.OutputTokens != 8 {
		t.Errorf("Unexpected totals: %+v", total)
	}
	if total.String() != "usage: 17 input tokens, 8 output tokens" {
		t.Errorf("Unexpected usage string: %s", total.String())
	}
}
