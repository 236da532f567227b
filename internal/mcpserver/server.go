// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/things/internal/apperr"
	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/contentservice"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/index"
)

const formatURI = "things://entry-format"

// Server wraps the MCP server with the catalog tools.
type Server struct {
	mcp      *server.MCPServer
	resolver *content.Resolver
	entries  *contentservice.Service
	inbox    *inbox.Service
	index    index.ItemIndex
}

// New creates a new MCP server with all catalog tools registered. idx may
// be nil, in which case search_items reports that search is unavailable.
func New(resolver *content.Resolver, entries *contentservice.Service, in *inbox.Service, idx index.ItemIndex) *Server {
	s := &Server{resolver: resolver, entries: entries, inbox: in, index: idx}

	s.mcp = server.NewMCPServer(
		"Things",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List the merged catalog (structured files, category lists and inbox) of one content type, or of every type."),
		mcp.WithString("type", mcp.Description("Content type, e.g. movies; empty for every type")),
		mcp.WithString("view", mcp.Description("merged (default), grouped or recent")),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("list_thoughts",
		mcp.WithDescription("List timestamped thoughts across the catalog, newest first."),
		mcp.WithString("filter", mcp.Description("Optional type or type/parent filter")),
	), s.listThoughts)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read the front-matter and body of a structured entry."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Content type")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Entry slug, may be nested (e.g. nolan/tenet)")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("search_items",
		mcp.WithDescription("Full-text search over titles, notes, categories and tags of every item."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchItems)

	s.mcp.AddTool(mcp.NewTool("add_to_inbox",
		mcp.WithDescription("Quick-add an item to the inbox of a content type. "+
			"Read the entry contract first via get_entry_contract or the "+formatURI+" resource."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Content type")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category inside the inbox file")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Item title")),
		mcp.WithString("note", mcp.Description("Optional short note")),
	), s.addToInbox)

	s.mcp.AddTool(mcp.NewTool("get_entry_contract",
		mcp.WithDescription("Returns the catalog entry format contract. "+
			"Call this before adding items to ensure correct structure."),
	), s.getEntryContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Entry Format Contract",
			mcp.WithResourceDescription("On-disk formats of structured entries, category lists and inbox files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := req.GetString("type", "")
	if typ == "" {
		all, err := s.resolver.All(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(all)
	}
	if !s.resolver.HasType(typ) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown content type: %s", typ)), nil
	}
	items, err := s.resolver.Items(ctx, typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch view := req.GetString("view", "merged"); view {
	case "", "merged":
		return jsonResult(items)
	case "recent":
		return jsonResult(content.SortByRecency(items))
	case "grouped":
		return jsonResult(content.GroupByCategory(items))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown view: %s", view)), nil
	}
}

func (s *Server) listThoughts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	thoughts, err := s.resolver.Thoughts(ctx, req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(thoughts) == 0 {
		return mcp.NewToolResultText("no thoughts found"), nil
	}
	return jsonResult(thoughts)
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.entries.GetEntry(ctx, typ, slug)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", typ, slug)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) searchItems(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.index == nil {
		return mcp.NewToolResultError("search index is not available"), nil
	}
	results, err := s.index.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) addToInbox(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var add inbox.AddRequest
	var err error
	if add.Type, err = req.RequireString("type"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if add.Category, err = req.RequireString("category"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if add.Title, err = req.RequireString("title"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	add.Note = req.GetString("note", "")

	filename, err := s.inbox.Add(ctx, add)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added to %s: %s", filename, add.Title)), nil
}

func (s *Server) getEntryContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntryFormatContract), nil
}

func (s *Server) readFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     EntryFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
