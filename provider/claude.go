package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/toolserver"
)

const (
	// placeholderKeyPrefix is the dummy value shipped in the getting-started
	// example .env; it must never reach the API.
	placeholderKeyPrefix = "sk..."
	claudeKeyPrefix      = "sk-ant-"
)

// claudeHandle talks to the Anthropic API. The credential lives in the
// handle's client, not in process-wide state.
type claudeHandle struct {
	client *anthropic.Client
	model  string
}

// newClaudeHandle validates the credential format locally and builds the
// remote handle. Both checks fail fast, before any network call or tool
// server launch.
func newClaudeHandle(cfg *config.Config) (*claudeHandle, error) {
	key := cfg.ClaudeAPIKey
	if key == "" || strings.HasPrefix(key, placeholderKeyPrefix) {
		return nil, &ConfigurationError{
			Kind:   KindClaude,
			Reason: "CLAUDE_API_KEY is missing or still the placeholder; set a real key like sk-ant-...",
		}
	}
	if !strings.HasPrefix(key, claudeKeyPrefix) {
		return nil, &ConfigurationError{
			Kind:   KindClaude,
			Reason: "CLAUDE_API_KEY does not start with 'sk-ant-'; Claude API keys start with 'sk-ant-'",
		}
	}

	client := anthropic.NewClient(option.WithAPIKey(key))
	return &claudeHandle{client: &client, model: cfg.ClaudeModel}, nil
}

func (c *claudeHandle) Chat(ctx context.Context, messages []Message, tools []toolserver.Tool) (*Reply, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		Messages:  convertMessagesToAnthropic(messages),
	}

	anthropicTools := convertToolsToAnthropic(tools)
	params.Tools = make([]anthropic.ToolUnionParam, len(anthropicTools))
	for i := range anthropicTools {
		params.Tools[i] = anthropic.ToolUnionParam{OfTool: &anthropicTools[i]}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &ProviderError{Kind: KindClaude, Err: err}
	}
	return processAnthropicResponse(resp)
}

func convertMessagesToAnthropic(messages []Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			if len(msg.ToolCalls) > 0 {
				var blocks []anthropic.ContentBlockParamUnion
				if msg.Content != "" {
					blocks = append(blocks, anthropic.ContentBlockParamUnion{
						OfText: &anthropic.TextBlockParam{Text: msg.Content},
					})
				}
				for _, tc := range msg.ToolCalls {
					argsBytes, err := json.Marshal(tc.Args)
					if err != nil {
						continue
					}
					blocks = append(blocks, anthropic.ContentBlockParamUnion{
						OfToolUse: &anthropic.ToolUseBlockParam{
							Type:  "tool_use",
							ID:    tc.ID,
							Name:  tc.Name,
							Input: argsBytes,
						},
					})
				}
				out = append(out, anthropic.MessageParam{
					Role:    anthropic.MessageParamRoleAssistant,
					Content: blocks,
				})
			} else if msg.Content != "" {
				out = append(out, anthropic.MessageParam{
					Role: anthropic.MessageParamRoleAssistant,
					Content: []anthropic.ContentBlockParamUnion{{
						OfText: &anthropic.TextBlockParam{Text: msg.Content},
					}},
				})
			}
		case "tool":
			if len(msg.ToolCalls) != 1 {
				continue
			}
			out = append(out, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: msg.ToolCalls[0].ID,
						Content: []anthropic.ToolResultBlockParamContentUnion{{
							OfText: &anthropic.TextBlockParam{Text: msg.Content},
						}},
					},
				}},
			})
		}
	}
	return out
}

func convertToolsToAnthropic(tools []toolserver.Tool) []anthropic.ToolParam {
	if len(tools) == 0 {
		return nil
	}
	var out []anthropic.ToolParam
	for _, t := range tools {
		out = append(out, anthropic.ToolParam{
			Name:        t.Name(),
			Description: anthropic.String(t.Description()),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{},
			},
		})
	}
	return out
}

func processAnthropicResponse(resp *anthropic.Message) (*Reply, error) {
	reply := &Reply{
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}
	for _, content := range resp.Content {
		switch c := content.AsAny().(type) {
		case anthropic.TextBlock:
			reply.Content += c.Text
		case anthropic.ToolUseBlock:
			var args map[string]interface{}
			if err := json.Unmarshal(c.Input, &args); err != nil {
				return nil, &ProviderError{Kind: KindClaude, Err: err}
			}
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				ID:   c.ID,
				Name: c.Name,
				Args: args,
			})
		}
	}
	return reply, nil
}
