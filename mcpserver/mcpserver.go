// Package mcpserver exposes the vault over the Model Context Protocol so
// agents can browse and add notes through stdio.
//
// Only read tools and note creation are exposed. Deletes and migration stay
// behind the web UI where a human confirms them.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rohanthewiz/logger"

	"notevault/models"
)

const (
	serverName    = "notevault"
	serverVersion = "0.1.0"

	defaultListLimit = 20
	maxListLimit     = 100
	previewRunes     = 300
)

const instructions = `NoteVault stores short study notes grouped into modules. ` +
	`Use list_modules to find a module id, list_notes or search_notes to find notes, ` +
	`get_note for the full content and create_note to add a note to a module.`

// NewServer creates an MCP server with every vault tool registered.
func NewServer(store *models.Store) *server.MCPServer {
	srv := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	registerTools(srv, store)
	return srv
}

// ServeStdio blocks serving the vault tools on stdin/stdout.
func ServeStdio(store *models.Store) error {
	logger.Info("Serving MCP over stdio")
	return server.ServeStdio(NewServer(store))
}

func registerTools(srv *server.MCPServer, store *models.Store) {
	srv.AddTool(
		mcp.NewTool("list_modules",
			mcp.WithDescription("List every module with its id and number of notes."),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		handleListModules(store),
	)

	srv.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List the newest notes, optionally within one module. Use module \"uncategorized\" for notes whose module was deleted."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("module", mcp.Description("Module id to list")),
			mcp.WithString("type", mcp.Description("Filter by note type: text, summary, qa, guide")),
			mcp.WithNumber("limit", mcp.Description("Max results (default: 20, max: 100)")),
		),
		handleListNotes(store),
	)

	srv.AddTool(
		mcp.NewTool("search_notes",
			mcp.WithDescription("Search note titles and content. Matching is case-insensitive."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for")),
			mcp.WithString("module", mcp.Description("Only notes in this module")),
			mcp.WithString("tag", mcp.Description("Only notes carrying this tag")),
			mcp.WithNumber("limit", mcp.Description("Max results (default: 20, max: 100)")),
		),
		handleSearchNotes(store),
	)

	srv.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Return the full content of one note."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		),
		handleGetNote(store),
	)

	srv.AddTool(
		mcp.NewTool("create_note",
			mcp.WithDescription("Add a note to an existing module. The title is derived from the first line when omitted."),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("module", mcp.Required(), mcp.Description("Module id")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Note body, markdown allowed")),
			mcp.WithString("title", mcp.Description("Optional title")),
			mcp.WithString("tags", mcp.Description("Comma-separated tags")),
			mcp.WithString("type", mcp.Description("text (default), summary, qa or guide")),
		),
		handleCreateNote(store),
	)
}

func handleListModules(store *models.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cats := store.Categories()
		if len(cats) == 0 {
			return mcp.NewToolResultText("No modules yet."), nil
		}

		counts := store.NoteCounts()
		var b strings.Builder
		fmt.Fprintf(&b, "%d modules:\n\n", len(cats))
		for _, c := range cats {
			fmt.Fprintf(&b, "- %s (id: %s, notes: %d)\n", c.Title, c.ID, counts[c.ID])
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleListNotes(store *models.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind := models.NoteKind(req.GetString("type", ""))
		if kind != "" && !kind.Valid() {
			return mcp.NewToolResultError("Unknown note type: " + string(kind)), nil
		}
		notes := store.Notes(models.NoteFilter{
			ModuleID: req.GetString("module", ""),
			Kind:     kind,
			Limit:    limitArg(req),
		})
		return mcp.NewToolResultText(formatNotes(notes, "No notes found.")), nil
	}
}

func handleSearchNotes(store *models.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		notes := store.Notes(models.NoteFilter{
			ModuleID: req.GetString("module", ""),
			Query:    query,
			Tag:      req.GetString("tag", ""),
			Limit:    limitArg(req),
		})
		return mcp.NewToolResultText(formatNotes(notes, fmt.Sprintf("No notes found for: %q", query))), nil
	}
}

func handleGetNote(store *models.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		note, err := store.Note(id)
		if err != nil {
			return mcp.NewToolResultError("Note not found: " + id), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", note.Title)
		fmt.Fprintf(&b, "id: %s | module: %s | type: %s", note.ID, note.ModuleID, note.Kind)
		if len(note.Tags) > 0 {
			fmt.Fprintf(&b, " | tags: %s", strings.Join(note.Tags, ", "))
		}
		b.WriteString("\n\n")
		b.WriteString(note.Content)
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleCreateNote(store *models.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := models.NoteInput{
			ModuleID: req.GetString("module", ""),
			Title:    req.GetString("title", ""),
			Content:  req.GetString("content", ""),
			Tags:     splitTags(req.GetString("tags", "")),
			Kind:     models.NoteKind(req.GetString("type", "")),
		}

		note, err := store.CreateNote(ctx, in)
		if err != nil {
			var verr *models.ValidationError
			switch {
			case errors.As(err, &verr):
				return mcp.NewToolResultError(verr.Message), nil
			case errors.Is(err, models.ErrNotFound):
				return mcp.NewToolResultError("Module not found: " + in.ModuleID), nil
			}
			logger.LogErr(err, "mcp create_note failed", "module_id", in.ModuleID)
			return mcp.NewToolResultError("Could not save note: " + err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Created note %q (id: %s)", note.Title, note.ID)), nil
	}
}

func formatNotes(notes []models.Note, empty string) string {
	if len(notes) == 0 {
		return empty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d notes:\n\n", len(notes))
	for i, n := range notes {
		fmt.Fprintf(&b, "[%d] %s (id: %s, type: %s)\n    %s\n\n",
			i+1, n.Title, n.ID, n.Kind, truncate(n.Content, previewRunes))
	}
	return b.String()
}

func limitArg(req mcp.CallToolRequest) int {
	limit := req.GetInt("limit", defaultListLimit)
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
