package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/toolserver"
)

// bedrockHandle talks to Anthropic models hosted on AWS Bedrock. Credentials
// come from the ambient AWS configuration chain.
type bedrockHandle struct {
	client  *bedrockruntime.Client
	modelID string
}

func newBedrockHandle(ctx context.Context, cfg *config.Config) (*bedrockHandle, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, &ConfigurationError{
			Kind:   KindBedrock,
			Reason: fmt.Sprintf("failed to load AWS config: %v", err),
		}
	}
	return &bedrockHandle{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.BedrockModel,
	}, nil
}

func (b *bedrockHandle) Chat(ctx context.Context, messages []Message, tools []toolserver.Tool) (*Reply, error) {
	body, err := buildBedrockRequest(messages, tools)
	if err != nil {
		return nil, &ProviderError{Kind: KindBedrock, Err: err}
	}

	resp, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, &ProviderError{Kind: KindBedrock, Err: err}
	}
	return processBedrockResponse(resp.Body)
}

// buildBedrockRequest assembles the Anthropic-on-Bedrock JSON body. The
// request schema is map-built because Bedrock has no typed SDK for it.
func buildBedrockRequest(messages []Message, tools []toolserver.Tool) ([]byte, error) {
	var body []map[string]interface{}
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			body = append(body, map[string]interface{}{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": msg.Content},
				},
			})
		case "assistant":
			if len(msg.ToolCalls) > 0 {
				var uses []map[string]interface{}
				for _, tc := range msg.ToolCalls {
					uses = append(uses, map[string]interface{}{
						"type":  "tool_use",
						"id":    tc.ID,
						"name":  tc.Name,
						"input": tc.Args,
					})
				}
				body = append(body, map[string]interface{}{"role": "assistant", "content": uses})
			} else if msg.Content != "" {
				body = append(body, map[string]interface{}{
					"role": "assistant",
					"content": []map[string]interface{}{
						{"type": "text", "text": msg.Content},
					},
				})
			}
		case "tool":
			if len(msg.ToolCalls) != 1 {
				continue
			}
			body = append(body, map[string]interface{}{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type":        "tool_result",
						"tool_use_id": msg.ToolCalls[0].ID,
						"content":     msg.Content,
					},
				},
			})
		}
	}

	request := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        4096,
		"messages":          body,
	}
	if len(tools) > 0 {
		var toolDefs []map[string]interface{}
		for _, t := range tools {
			toolDefs = append(toolDefs, map[string]interface{}{
				"name":        t.Name(),
				"description": t.Description(),
				"input_schema": map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			})
		}
		request["tools"] = toolDefs
	}
	return json.Marshal(request)
}

func processBedrockResponse(body []byte) (*Reply, error) {
	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ProviderError{Kind: KindBedrock, Err: err}
	}
	if errMsg, ok := response["error"]; ok {
		return nil, &ProviderError{Kind: KindBedrock, Err: fmt.Errorf("bedrock API error: %v", errMsg)}
	}

	reply := &Reply{}
	if usage, ok := response["usage"].(map[string]interface{}); ok {
		if v, ok := usage["input_tokens"].(float64); ok {
			reply.Usage.InputTokens = int64(v)
		}
		if v, ok := usage["output_tokens"].(float64); ok {
			reply.Usage.OutputTokens = int64(v)
		}
	}

	contentArray, ok := response["content"].([]interface{})
	if !ok {
		return reply, nil
	}

	callID := 0
	for _, item := range contentArray {
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		switch itemMap["type"] {
		case "text":
			if text, ok := itemMap["text"].(string); ok {
				reply.Content += text
			}
		case "tool_use":
			name, ok := itemMap["name"].(string)
			if !ok {
				continue
			}
			input, ok := itemMap["input"].(map[string]interface{})
			if !ok {
				continue
			}
			id := fmt.Sprintf("call_%d_%s", callID, name)
			if toolID, ok := itemMap["id"].(string); ok {
				id = toolID
			}
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{ID: id, Name: name, Args: input})
			callID++
		}
	}
	return reply, nil
}
