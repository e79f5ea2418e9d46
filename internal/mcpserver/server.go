// Package mcpserver exposes selection queries over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/structlink/internal/selection"
	"github.com/agentic-research/structlink/internal/structure"
)

// NodeView is the wire shape of a LabelNode.
type NodeView struct {
	ID           uint32 `json:"id"`
	Idx          int    `json:"idx"`
	IdxParent    int    `json:"idx_parent"`
	Label        string `json:"label"`
	Number       string `json:"number,omitempty"`
	UUID         string `json:"uuid,omitempty"`
	FragmentGUID string `json:"fragment_guid,omitempty"`
	Children     int    `json:"children"`
	GeomChildren int    `json:"geom_children"`
}

// ViewOf converts n for the wire; nil stays nil.
func ViewOf(n *structure.LabelNode) *NodeView {
	if n == nil {
		return nil
	}
	return &NodeView{
		ID:           n.ID,
		Idx:          n.Idx,
		IdxParent:    n.IdxParent,
		Label:        n.Label,
		Number:       n.Number,
		UUID:         n.UUID,
		FragmentGUID: n.FragmentGUID,
		Children:     len(n.Children),
		GeomChildren: len(n.ChildsGeom),
	}
}

// Summary describes the loaded forest.
type Summary struct {
	Loaded      bool `json:"loaded"`
	Records     int  `json:"records"`
	Nodes       int  `json:"nodes"`
	Roots       int  `json:"roots"`
	Diagnostics int  `json:"diagnostics"`
}

// Server wraps an MCP server answering queries against one Linker.
type Server struct {
	linker *selection.Linker
	holder *selection.Holder
	mcp    *server.MCPServer
}

func New(linker *selection.Linker, holder *selection.Holder, version string) *Server {
	s := &Server{
		linker: linker,
		holder: holder,
		mcp:    server.NewMCPServer("structlink", version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool("find_owning_node",
		mcp.WithDescription("Find the structure node owning a renderable object"),
		mcp.WithString("uuid", mcp.Required(), mcp.Description("UUID of the picked renderable object")),
	), s.handleFindOwner)

	s.mcp.AddTool(mcp.NewTool("expand_selection",
		mcp.WithDescription("List the live renderable objects representing a structure node and its fragment group"),
		mcp.WithNumber("idx", mcp.Required(), mcp.Description("Record index of the structure node")),
	), s.handleExpand)

	s.mcp.AddTool(mcp.NewTool("forest_summary",
		mcp.WithDescription("Describe the loaded structure"),
	), s.handleSummary)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleFindOwner(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uuid, err := req.RequireString("uuid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.linker.FindOwningNode(uuid)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"node": ViewOf(n)})
}

func (s *Server) handleExpand(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := req.RequireInt("idx")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := s.holder.Current()
	if f == nil {
		return jsonResult(map[string]any{"objects": []any{}})
	}
	n, ok := f.ByIdx(idx)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no node at index %d", idx)), nil
	}
	objs, err := s.linker.ExpandSelection(n)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"node": ViewOf(n), "objects": objs})
}

func (s *Server) handleSummary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(Summarize(s.holder.Current()))
}

// Summarize reports the size of f; a nil forest is reported as not loaded.
func Summarize(f *structure.Forest) Summary {
	if f == nil {
		return Summary{}
	}
	return Summary{
		Loaded:      true,
		Records:     f.Records(),
		Nodes:       f.Len(),
		Roots:       len(f.Roots),
		Diagnostics: len(f.Diagnostics),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
