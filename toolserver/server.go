package toolserver

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/kwhittle/fathom/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool is one callable capability advertised by a running tool server.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, args map[string]interface{}) (string, error)
}

// LaunchError reports a tool server that failed to start. The session skips
// the server with a warning and continues if at least one other launched.
type LaunchError struct {
	Server string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("tool server '%s' failed to launch: %v", e.Server, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Instance is a launched tool server bound to its subprocess and MCP
// connection. It is exclusively owned by the session that launched it and
// must not outlive it.
type Instance struct {
	desc   Descriptor
	cmd    *exec.Cmd
	conn   *mcp.ClientSession
	tools  []Tool
	closed bool
}

// Launch starts the server subprocess described by desc, negotiates the MCP
// handshake, and discovers the tools it advertises. Context paths are
// appended to the launch arguments only for descriptors that require them.
func Launch(ctx context.Context, desc Descriptor, contextPaths []string) (*Instance, error) {
	args := append([]string{}, desc.Args...)
	if desc.RequiresContextPaths {
		args = append(args, contextPaths...)
	}

	cmd := exec.Command(desc.Command, args...)
	cmd.Stderr = os.Stderr

	client := mcp.NewClient(&mcp.Implementation{Name: "fathom", Version: "v0.1.0"}, nil)
	conn, err := client.Connect(ctx, mcp.NewCommandTransport(cmd))
	if err != nil {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		return nil, &LaunchError{Server: desc.ID, Err: err}
	}

	inst := &Instance{desc: desc, cmd: cmd, conn: conn}

	listParams := &mcp.ListToolsParams{}
	for {
		list, err := conn.ListTools(ctx, listParams)
		if err != nil {
			inst.Close()
			return nil, &LaunchError{Server: desc.ID, Err: errors.Wrapf(err, "failed to list tools")}
		}
		for _, t := range list.Tools {
			inst.tools = append(inst.tools, &serverTool{
				server:      desc.ID,
				name:        t.Name,
				description: t.Description,
				inst:        inst,
			})
		}
		if list.NextCursor == "" {
			break
		}
		listParams.Cursor = list.NextCursor
	}

	return inst, nil
}

// Descriptor returns the catalog entry this instance was launched from.
func (i *Instance) Descriptor() Descriptor {
	return i.desc
}

// Tools returns the tools discovered at launch.
func (i *Instance) Tools() []Tool {
	return i.tools
}

// Close tears down the MCP connection and the subprocess. It is safe to call
// more than once; subsequent calls are no-ops.
func (i *Instance) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	if i.conn != nil {
		i.conn.Close()
	}
	if i.cmd != nil && i.cmd.Process != nil {
		return i.cmd.Process.Kill()
	}
	return nil
}

// serverTool adapts one advertised MCP tool to the Tool interface.
type serverTool struct {
	server      string
	name        string
	description string
	inst        *Instance
}

func (t *serverTool) Name() string {
	return t.name
}

func (t *serverTool) Description() string {
	return t.description
}

func (t *serverTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	result, err := t.inst.conn.CallTool(ctx, &mcp.CallToolParams{
		Name:      t.name,
		Arguments: args,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to call tool '%s' on server '%s'", t.name, t.server)
	}
	out := ""
	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			out += text.Text
		}
	}
	return out, nil
}
