package provider

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/toolserver"
	"google.golang.org/api/option"
)

var errProviderEmptyExchange = fmt.Errorf("received an empty exchange")

func geminiCallID(n int, name string) string {
	return fmt.Sprintf("call_%d_%s", n, name)
}

// geminiHandle talks to the Google Gemini API.
type geminiHandle struct {
	model *genai.GenerativeModel
}

func newGeminiHandle(ctx context.Context, cfg *config.Config) (*geminiHandle, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, &ConfigurationError{Kind: KindGemini, Reason: "GEMINI_API_KEY is not set"}
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, &ProviderError{Kind: KindGemini, Err: err}
	}
	return &geminiHandle{model: client.GenerativeModel(cfg.GeminiModel)}, nil
}

func (g *geminiHandle) Chat(ctx context.Context, messages []Message, tools []toolserver.Tool) (*Reply, error) {
	contents := convertMessagesToGemini(messages)
	if len(contents) == 0 {
		return nil, &ProviderError{Kind: KindGemini, Err: errProviderEmptyExchange}
	}
	g.model.Tools = convertToolsToGemini(tools)

	// The last message is the new prompt; everything before it is history.
	last := contents[len(contents)-1]
	chat := g.model.StartChat()
	chat.History = contents[:len(contents)-1]

	resp, err := chat.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, &ProviderError{Kind: KindGemini, Err: err}
	}
	return processGeminiResponse(resp)
}

func convertMessagesToGemini(messages []Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range messages {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		// Tool results travel as user-role text; Gemini sees the outcome
		// inline rather than as a structured function response.
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}

func convertToolsToGemini(tools []toolserver.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	var decls []*genai.FunctionDeclaration
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"args": {
						Type:        genai.TypeObject,
						Description: "Arguments for the function call, as a map.",
					},
				},
				Required: []string{"args"},
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func processGeminiResponse(resp *genai.GenerateContentResponse) (*Reply, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &ProviderError{Kind: KindGemini, Err: errProviderEmptyExchange}
	}

	reply := &Reply{}
	if resp.UsageMetadata != nil {
		reply.Usage = Usage{
			InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	callID := 0
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			reply.Content += string(v)
		case genai.FunctionCall:
			// Arguments are nested under "args" per the declared schema; a
			// call without them still goes out with an empty map so the
			// tool can reject it itself.
			args, _ := v.Args["args"].(map[string]interface{})
			if args == nil {
				args = map[string]interface{}{}
			}
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				ID:   geminiCallID(callID, v.Name),
				Name: v.Name,
				Args: args,
			})
			callID++
		}
	}
	return reply, nil
}
