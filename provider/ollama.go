package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/toolserver"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// apiVersionSuffix is the versioned path Ollama's OpenAI-compatible endpoint
// is served under.
const apiVersionSuffix = "/v1"

// normalizeBaseURL appends the API version suffix when the configured base
// URL lacks it, trimming trailing slashes first.
func normalizeBaseURL(raw string) string {
	if strings.HasSuffix(raw, apiVersionSuffix) {
		return raw
	}
	return strings.TrimRight(raw, "/") + apiVersionSuffix
}

// ollamaHandle talks to a local Ollama instance through its OpenAI-compatible
// chat completion API.
type ollamaHandle struct {
	client *openai.Client
	model  string
}

// newOllamaHandle builds the local handle. No liveness check happens here;
// an unreachable endpoint surfaces on the first invocation.
func newOllamaHandle(cfg *config.Config) (*ollamaHandle, error) {
	if cfg.OllamaBaseURL == "" {
		return nil, &ConfigurationError{Kind: KindOllama, Reason: "OLLAMA_BASE_URL is empty"}
	}
	if cfg.OllamaModel == "" {
		return nil, &ConfigurationError{Kind: KindOllama, Reason: "OLLAMA_MODEL is empty"}
	}

	c := openai.NewClient(
		option.WithBaseURL(normalizeBaseURL(cfg.OllamaBaseURL)),
		// Ollama ignores the key but the client requires one.
		option.WithAPIKey("ollama"),
	)
	return &ollamaHandle{client: &c, model: cfg.OllamaModel}, nil
}

func (o *ollamaHandle) Chat(ctx context.Context, messages []Message, tools []toolserver.Tool) (*Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: convertMessagesToOpenAI(messages),
		Tools:    convertToolsToOpenAI(tools),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &ProviderError{Kind: KindOllama, Err: err}
	}
	return processOpenAIResponse(resp)
}

func convertMessagesToOpenAI(messages []Message) []openai.ChatCompletionMessageParamUnion {
	var chatMessages []openai.ChatCompletionMessageParamUnion
	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			assistantMessage := openai.ChatCompletionMessage{
				Role:    "assistant",
				Content: msg.Content,
			}
			if len(msg.ToolCalls) > 0 {
				var toolCalls []openai.ChatCompletionMessageToolCallUnion
				for _, tc := range msg.ToolCalls {
					argsBytes, err := json.Marshal(tc.Args)
					if err != nil {
						continue
					}
					toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallUnion{
						ID:   tc.ID,
						Type: "function",
						Function: openai.ChatCompletionMessageFunctionToolCallFunction{
							Name:      tc.Name,
							Arguments: string(argsBytes),
						},
					})
				}
				assistantMessage.ToolCalls = toolCalls
			}
			chatMessages = append(chatMessages, assistantMessage.ToParam())
		case "tool":
			// A tool result answers exactly one call; a malformed entry is
			// dropped rather than sent.
			if len(msg.ToolCalls) != 1 {
				continue
			}
			chatMessages = append(chatMessages, openai.ToolMessage(msg.Content, msg.ToolCalls[0].ID))
		default:
			chatMessages = append(chatMessages, openai.UserMessage(msg.Content))
		}
	}
	return chatMessages
}

func convertToolsToOpenAI(tools []toolserver.Tool) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	var out []openai.ChatCompletionToolUnionParam
	for _, t := range tools {
		// A generic object schema; the model infers arguments from the
		// tool description.
		params := openai.FunctionParameters{
			"type":       "object",
			"properties": map[string]any{},
		}
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name(),
			Description: openai.String(t.Description()),
			Parameters:  params,
		}))
	}
	return out
}

func processOpenAIResponse(resp *openai.ChatCompletion) (*Reply, error) {
	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) == 0 {
		return &Reply{Usage: usage}, nil
	}

	choice := resp.Choices[0].Message
	reply := &Reply{Content: choice.Content, Usage: usage}
	for _, tc := range choice.ToolCalls {
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, &ProviderError{Kind: KindOllama, Err: err}
		}
		reply.ToolCalls = append(reply.ToolCalls, ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return reply, nil
}
