// Package agent runs one conversational session: it resolves the model
// handle, launches the selected tool servers, drives the turn and follow-up
// loop, and guarantees the servers are released on every exit path.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/errors"
	"github.com/kwhittle/fathom/history"
	"github.com/kwhittle/fathom/provider"
	"github.com/kwhittle/fathom/toolserver"
)

// toolServer is the session's view of a launched server instance.
type toolServer interface {
	Descriptor() toolserver.Descriptor
	Tools() []toolserver.Tool
	Close() error
}

// launchServer starts one tool server. Tests swap this out to avoid real
// subprocesses.
var launchServer = func(ctx context.Context, d toolserver.Descriptor, contextPaths []string) (toolServer, error) {
	return toolserver.Launch(ctx, d, contextPaths)
}

// Params configures a session. In/Out default to stdin/stdout; Handle, when
// set, overrides provider resolution.
type Params struct {
	Provider     provider.Kind
	Handle       provider.ModelHandle
	Servers      []toolserver.Descriptor
	ContextPaths []string
	FollowUp     bool
	In           io.Reader
	Out          io.Writer
}

// Session owns one conversation: its model handle, its tool servers, and its
// history. Nothing in it is shared across sessions.
type Session struct {
	handle       provider.ModelHandle
	selected     []toolserver.Descriptor
	contextPaths []string
	hist         *history.History
	followUp     bool
	in           io.Reader
	out          io.Writer

	servers  []toolServer
	tools    []toolserver.Tool
	usage    provider.Usage
	released bool
}

// New configures a session: context paths are validated and filtered, the
// selection is checked against the available paths, and the model handle is
// resolved. Any failure here aborts before anything launches.
func New(ctx context.Context, cfg *config.Config, p Params) (*Session, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	warn := func(msg string) {
		fmt.Fprintf(out, "Warning: %s\n", msg)
	}

	contextPaths := FilterContextPaths(p.ContextPaths, cfg.ExcludePaths, warn)
	if err := toolserver.CheckContextPaths(p.Servers, contextPaths); err != nil {
		return nil, err
	}

	handle := p.Handle
	if handle == nil {
		var err error
		handle, err = provider.Resolve(ctx, p.Provider, cfg)
		if err != nil {
			return nil, err
		}
	}

	return &Session{
		handle:       handle,
		selected:     p.Servers,
		contextPaths: contextPaths,
		hist:         history.New(),
		followUp:     p.FollowUp,
		in:           in,
		out:          out,
	}, nil
}

// ContextPaths returns the validated context directories.
func (s *Session) ContextPaths() []string {
	return s.contextPaths
}

// History returns the session's conversation history.
func (s *Session) History() *history.History {
	return s.hist
}

// Usage returns the accumulated token accounting for the session.
func (s *Session) Usage() provider.Usage {
	return s.usage
}

// Run launches the selected tool servers, processes the initial prompt, and
// (when follow-up mode is enabled) loops on further input until the user
// exits or cancels. Tool servers are released on every exit path.
func (s *Session) Run(ctx context.Context, initialPrompt string) error {
	defer s.Close()

	for _, d := range s.selected {
		inst, err := launchServer(ctx, d, s.contextPaths)
		if err != nil {
			fmt.Fprintf(s.out, "Warning: %v\n", err)
			continue
		}
		s.servers = append(s.servers, inst)
		s.tools = append(s.tools, inst.Tools()...)
	}
	if len(s.selected) > 0 && len(s.servers) == 0 {
		return errors.New("no tool servers could be launched")
	}

	if err := s.turn(ctx, initialPrompt); err != nil {
		if canceled(ctx, err) {
			fmt.Fprintln(s.out, "Conversation ended by user.")
			return nil
		}
		return err
	}

	if !s.followUp {
		return nil
	}
	return s.followUpLoop(ctx)
}

// followUpLoop reads one line of input at a time. Empty input re-prompts,
// the exit keywords or cancellation end the session cleanly, and a failed
// turn is reported without ending the loop.
//
// Input is read on its own goroutine so a Ctrl+C at the prompt ends the
// session immediately instead of waiting for the next Enter.
func (s *Session) followUpLoop(ctx context.Context) error {
	fmt.Fprintln(s.out, "\nFollow-up mode enabled. Type 'quit', 'exit', or press Ctrl+C to end.")

	lines := make(chan string)
	var scanErr error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()

	for {
		fmt.Fprint(s.out, "Follow-up: ")
		var line string
		var open bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "Conversation ended by user.")
			return nil
		case line, open = <-lines:
			if !open {
				// EOF ends the session like an exit keyword.
				return scanErr
			}
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Fprintln(s.out, "Ending conversation.")
			return nil
		}

		if err := s.turn(ctx, input); err != nil {
			if canceled(ctx, err) {
				fmt.Fprintln(s.out, "Conversation ended by user.")
				return nil
			}
			// A single bad turn is not fatal; history was not touched.
			fmt.Fprintf(s.out, "Error in follow-up: %v\n", err)
		}
	}
}

// turn runs one exchange: the prompt (prefixed with the rendered history
// when any exists) goes to the model, tool calls are executed against the
// session's servers until a final text reply arrives, and only then are the
// user and assistant turns appended to history.
func (s *Session) turn(ctx context.Context, input string) error {
	prompt := input
	if s.hist.Len() > 0 {
		prompt = s.hist.RenderContext() + input
	}

	msgs := []provider.Message{{Role: "user", Content: prompt}}
	var turnUsage provider.Usage
	for {
		reply, err := s.handle.Chat(ctx, msgs, s.tools)
		if err != nil {
			return err
		}
		turnUsage.Add(reply.Usage)

		if len(reply.ToolCalls) == 0 {
			s.hist.Append(history.RoleUser, input)
			s.hist.Append(history.RoleAssistant, reply.Content)
			s.usage.Add(turnUsage)
			fmt.Fprintf(s.out, "%s\n\n", reply.Content)
			fmt.Fprintln(s.out, turnUsage.String())
			return nil
		}

		msgs = append(msgs, provider.Message{
			Role:      "assistant",
			Content:   reply.Content,
			ToolCalls: reply.ToolCalls,
		})
		for _, call := range reply.ToolCalls {
			msgs = append(msgs, provider.Message{
				Role:      "tool",
				Content:   s.callTool(ctx, call),
				ToolCalls: []provider.ToolCall{call},
			})
		}
	}
}

// callTool executes one requested tool call. Failures are reported back to
// the model as text rather than failing the turn.
func (s *Session) callTool(ctx context.Context, call provider.ToolCall) string {
	for _, t := range s.tools {
		if t.Name() != call.Name {
			continue
		}
		out, err := t.Call(ctx, call.Args)
		if err != nil {
			return fmt.Sprintf("Error executing tool '%s': %v", call.Name, err)
		}
		return out
	}
	return fmt.Sprintf("Error: tool '%s' is not available", call.Name)
}

// Close releases every launched tool server. It is idempotent; a session
// can be closed more than once without double-releasing.
func (s *Session) Close() error {
	if s.released {
		return nil
	}
	s.released = true
	var firstErr error
	for _, srv := range s.servers {
		if err := srv.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// canceled reports whether an error (or the context itself) represents a
// user-initiated cancellation, which always closes the session cleanly.
func canceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
