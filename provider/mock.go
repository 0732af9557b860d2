package provider

import (
	"context"
	"fmt"

	"github.com/kwhittle/fathom/toolserver"
)

// MockHandle is an in-process model handle for tests. With no scripted
// replies it parrots the last message back; scripted replies are returned in
// order and the last one repeats.
type MockHandle struct {
	Err     error
	Replies []Reply

	Calls   int
	Prompts []string
}

func (m *MockHandle) Chat(ctx context.Context, messages []Message, tools []toolserver.Tool) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Kind: "mock", Err: err}
	}
	m.Calls++
	if len(messages) > 0 {
		m.Prompts = append(m.Prompts, messages[len(messages)-1].Content)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Replies) > 0 {
		idx := m.Calls - 1
		if idx >= len(m.Replies) {
			idx = len(m.Replies) - 1
		}
		reply := m.Replies[idx]
		return &reply, nil
	}

	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}
	return &Reply{
		Content: fmt.Sprintf("mock reply to: %s", last),
		Usage:   Usage{InputTokens: 1, OutputTokens: 1},
	}, nil
}
