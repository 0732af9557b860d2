// Package provider resolves a provider selection into a ready-to-use model
// handle and defines the invocation contract shared by all variants.
package provider

import (
	"context"
	"fmt"

	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/errors"
	"github.com/kwhittle/fathom/toolserver"
)

// Kind names a model provider variant.
type Kind string

const (
	KindOllama  Kind = "ollama"
	KindClaude  Kind = "claude"
	KindGemini  Kind = "gemini"
	KindBedrock Kind = "bedrock"
)

// ParseKind validates a provider name from user input.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOllama, KindClaude, KindGemini, KindBedrock:
		return Kind(s), nil
	}
	return "", errors.New("unsupported model provider '%s' (expected ollama, claude, gemini, or bedrock)", s)
}

// Message is one entry of the per-turn exchange sent to a model. The "tool"
// role carries a tool result back to the model, identified by the single
// ToolCall it answers.
type Message struct {
	Role      string
	Content   string
	ToolCalls []ToolCall
}

// ToolCall is a model's request to invoke one tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// Usage is the token accounting reported for one invocation.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Add accumulates another invocation's usage.
func (u *Usage) Add(o Usage) {
	u.InputTokens += o.InputTokens
	u.OutputTokens += o.OutputTokens
}

func (u Usage) String() string {
	return fmt.Sprintf("usage: %d input tokens, %d output tokens", u.InputTokens, u.OutputTokens)
}

// Reply is one model response: either final text, or a set of tool calls the
// session must execute and feed back.
type Reply struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// ModelHandle is the polymorphic capability for invoking a model. Every
// handle carries its own credential; resolving a handle never mutates
// process-wide state.
type ModelHandle interface {
	Chat(ctx context.Context, messages []Message, tools []toolserver.Tool) (*Reply, error)
}

// ConfigurationError reports a bad or missing credential or endpoint. It is
// raised before any network call and aborts the session before launch.
type ConfigurationError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s provider configuration error: %s", e.Kind, e.Reason)
}

// ProviderError reports a transport or auth failure during invocation.
type ProviderError struct {
	Kind Kind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider request failed: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Resolve maps a provider kind and configuration to a ready handle. New
// providers add a variant here, not branching at call sites.
func Resolve(ctx context.Context, kind Kind, cfg *config.Config) (ModelHandle, error) {
	switch kind {
	case KindOllama:
		return newOllamaHandle(cfg)
	case KindClaude:
		return newClaudeHandle(cfg)
	case KindGemini:
		return newGeminiHandle(ctx, cfg)
	case KindBedrock:
		return newBedrockHandle(ctx, cfg)
	}
	return nil, errors.New("unsupported model provider '%s'", kind)
}
