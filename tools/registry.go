// Package tools exposes the wiki session and the ftb client as MCP tools.
// Each tool is a ToolSpec row bound to a typed client method.
package tools

import "github.com/modelcontextprotocol/go-sdk/mcp"

// ToolSpec describes one MCP tool.
type ToolSpec struct {
	Name        string // MCP tool name, e.g. "ftb_list_tiles"
	Method      string // key into HandlerRegistry.binders, e.g. "ListTiles"
	Description string
	Title       string
	Category    string // query, changes, tilesheets, oredict

	// Extension is the wiki API extension the tool depends on; "core" for
	// stock MediaWiki.
	Extension string

	ReadOnly    bool
	Destructive bool
	Idempotent  bool
	OpenWorld   bool
}

// annotations maps the ToolSpec hints onto MCP tool annotations. Destructive
// and open-world hints are pointers in the protocol and are only set when true.
func (s ToolSpec) annotations() *mcp.ToolAnnotations {
	a := &mcp.ToolAnnotations{
		Title:          s.Title,
		ReadOnlyHint:   s.ReadOnly,
		IdempotentHint: s.Idempotent,
	}
	if s.Destructive {
		a.DestructiveHint = ptr(true)
	}
	if s.OpenWorld {
		a.OpenWorldHint = ptr(true)
	}
	return a
}

func ptr[T any](v T) *T {
	return &v
}
