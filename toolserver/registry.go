// Package toolserver manages the catalog, selection, and lifecycle of
// external MCP tool servers that the agent can attach to a session.
package toolserver

// Descriptor describes one launchable tool server. Descriptors are immutable
// catalog entries; they are only ever read and selected.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Command     string
	Args        []string

	// RequiresContextPaths marks servers that only make sense with at least
	// one context directory, which is appended to Args at launch time.
	RequiresContextPaths bool
}

// builtins is the fixed catalog. Declaration order is the display and ordinal
// order, so entries must not be reordered casually.
func builtins() []Descriptor {
	return []Descriptor{
		{
			ID:                   "filesystem",
			Name:                 "Filesystem",
			Description:          "Read and inspect files under the supplied context directories.",
			Command:              "npx",
			Args:                 []string{"-y", "@modelcontextprotocol/server-filesystem"},
			RequiresContextPaths: true,
		},
		{
			ID:          "github",
			Name:        "GitHub",
			Description: "Search repositories, issues, and pull requests on GitHub.",
			Command:     "npx",
			Args:        []string{"-y", "@modelcontextprotocol/server-github"},
		},
		{
			ID:          "fetch",
			Name:        "Fetch",
			Description: "Fetch web pages and convert them for model consumption.",
			Command:     "uvx",
			Args:        []string{"mcp-server-fetch"},
		},
		{
			ID:          "memory",
			Name:        "Memory",
			Description: "Knowledge-graph memory persisted for the session.",
			Command:     "npx",
			Args:        []string{"-y", "@modelcontextprotocol/server-memory"},
		},
		{
			ID:                   "git",
			Name:                 "Git",
			Description:          "Inspect git history and diffs in the supplied repositories.",
			Command:              "uvx",
			Args:                 []string{"mcp-server-git"},
			RequiresContextPaths: true,
		},
		{
			ID:          "sqlite",
			Name:        "SQLite",
			Description: "Query SQLite databases.",
			Command:     "uvx",
			Args:        []string{"mcp-server-sqlite"},
		},
		{
			ID:          "time",
			Name:        "Time",
			Description: "Current time and timezone conversions.",
			Command:     "uvx",
			Args:        []string{"mcp-server-time"},
		},
		{
			ID:          "everything",
			Name:        "Everything",
			Description: "Reference server exercising every MCP feature.",
			Command:     "npx",
			Args:        []string{"-y", "@modelcontextprotocol/server-everything"},
		},
	}
}

// Registry is the read-only catalog of tool servers. It is constructed once
// at process start and passed by reference into the selector and session.
type Registry struct {
	order []string
	byID  map[string]Descriptor
}

// NewRegistry builds a registry from the builtin catalog plus any extra
// descriptors (from the config overlay), appended in the order given. An
// extra entry reusing a builtin id replaces it in place, keeping numbering
// stable.
func NewRegistry(extra ...Descriptor) *Registry {
	r := &Registry{byID: make(map[string]Descriptor)}
	for _, d := range builtins() {
		r.add(d)
	}
	for _, d := range extra {
		r.add(d)
	}
	return r
}

func (r *Registry) add(d Descriptor) {
	if _, exists := r.byID[d.ID]; !exists {
		r.order = append(r.order, d.ID)
	}
	r.byID[d.ID] = d
}

// Lookup returns the descriptor for an id.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// List returns all descriptors in stable declaration order. The position of
// a descriptor in this list (1-based) is its ordinal for selection.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int {
	return len(r.order)
}
