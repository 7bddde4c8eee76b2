package mcpserver

import (
	"context"
	"strings"
	"testing"

	mcppkg "github.com/mark3labs/mcp-go/mcp"

	"notevault/localstore"
	"notevault/models"
)

func newMCPTestStore(t *testing.T) (*models.Store, models.Category) {
	t.Helper()
	s := models.NewStore(localstore.NewMemory(), nil)
	s.LoadLocal()

	cat, err := s.CreateCategory(context.Background(), models.CategoryInput{Title: "HISTORY"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return s, cat
}

func callResultText(t *testing.T, res *mcppkg.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("expected non-empty tool result")
	}
	text, ok := mcppkg.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content")
	}
	return text.Text
}

func call(t *testing.T, h func(context.Context, mcppkg.CallToolRequest) (*mcppkg.CallToolResult, error), args map[string]any) *mcppkg.CallToolResult {
	t.Helper()
	res, err := h(context.Background(), mcppkg.CallToolRequest{Params: mcppkg.CallToolParams{Arguments: args}})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res
}

func TestNewServerRegistersTools(t *testing.T) {
	s, _ := newMCPTestStore(t)
	if NewServer(s) == nil {
		t.Fatalf("expected MCP server instance")
	}
}

func TestHandleListModules(t *testing.T) {
	s, cat := newMCPTestStore(t)
	if _, err := s.CreateNote(context.Background(), models.NoteInput{ModuleID: cat.ID, Content: "rome"}); err != nil {
		t.Fatal(err)
	}

	text := callResultText(t, call(t, handleListModules(s), nil))
	if !strings.Contains(text, "HISTORY (id: "+cat.ID+", notes: 1)") {
		t.Fatalf("unexpected module listing: %q", text)
	}
}

func TestHandleListModulesEmpty(t *testing.T) {
	s := models.NewStore(localstore.NewMemory(), nil)
	s.LoadLocal()

	if text := callResultText(t, call(t, handleListModules(s), nil)); text != "No modules yet." {
		t.Fatalf("unexpected output: %q", text)
	}
}

func TestHandleCreateAndGetNote(t *testing.T) {
	s, cat := newMCPTestStore(t)

	res := call(t, handleCreateNote(s), map[string]any{
		"module":  cat.ID,
		"content": "The Peace of Westphalia was signed in 1648",
		"tags":    "europe, treaties",
	})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}

	notes := s.Notes(models.NoteFilter{ModuleID: cat.ID})
	if len(notes) != 1 {
		t.Fatalf("expected one stored note, got %d", len(notes))
	}
	if len(notes[0].Tags) != 2 || notes[0].Tags[1] != "treaties" {
		t.Errorf("expected split tags, got %v", notes[0].Tags)
	}

	text := callResultText(t, call(t, handleGetNote(s), map[string]any{"id": notes[0].ID}))
	for _, want := range []string{"# THE PEACE OF WESTPHALIA", "tags: europe, treaties", "signed in 1648"} {
		if !strings.Contains(text, want) {
			t.Errorf("get_note output missing %q: %q", want, text)
		}
	}
}

func TestHandleCreateNoteErrors(t *testing.T) {
	s, cat := newMCPTestStore(t)
	cases := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing content", map[string]any{"module": cat.ID}, "note content is required"},
		{"unknown module", map[string]any{"module": "nope", "content": "x"}, "Module not found: nope"},
		{"bad type", map[string]any{"module": cat.ID, "content": "x", "type": "poem"}, "unknown note type poem"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := call(t, handleCreateNote(s), tc.args)
			if !res.IsError {
				t.Fatal("expected a tool error")
			}
			if text := callResultText(t, res); text != tc.want {
				t.Errorf("got %q, want %q", text, tc.want)
			}
		})
	}
}

func TestHandleSearchNotes(t *testing.T) {
	s, cat := newMCPTestStore(t)
	ctx := context.Background()
	for _, content := range []string{"Magna Carta 1215", "Fall of Constantinople"} {
		if _, err := s.CreateNote(ctx, models.NoteInput{ModuleID: cat.ID, Content: content}); err != nil {
			t.Fatal(err)
		}
	}

	text := callResultText(t, call(t, handleSearchNotes(s), map[string]any{"query": "carta"}))
	if !strings.Contains(text, "Found 1 notes") || !strings.Contains(text, "Magna Carta 1215") {
		t.Fatalf("unexpected search output: %q", text)
	}

	text = callResultText(t, call(t, handleSearchNotes(s), map[string]any{"query": "zzz"}))
	if !strings.Contains(text, "No notes found") {
		t.Errorf("expected empty result message, got %q", text)
	}

	text = callResultText(t, call(t, handleSearchNotes(s), map[string]any{"query": "carta", "module": "other"}))
	if !strings.Contains(text, "No notes found") {
		t.Errorf("module filter not applied: %q", text)
	}

	if res := call(t, handleSearchNotes(s), map[string]any{}); !res.IsError {
		t.Error("expected a tool error without a query")
	}
}

func TestHandleListNotesRejectsUnknownType(t *testing.T) {
	s, _ := newMCPTestStore(t)
	if res := call(t, handleListNotes(s), map[string]any{"type": "poem"}); !res.IsError {
		t.Fatal("expected a tool error for an unknown type")
	}
}

func TestHandleGetNoteNotFound(t *testing.T) {
	s, _ := newMCPTestStore(t)
	res := call(t, handleGetNote(s), map[string]any{"id": "missing"})
	if !res.IsError || callResultText(t, res) != "Note not found: missing" {
		t.Fatalf("expected not found error, got %+v", res)
	}
}

func TestLimitArg(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{nil, defaultListLimit},
		{float64(5), 5},
		{float64(0), defaultListLimit},
		{float64(500), maxListLimit},
	}
	for _, tc := range cases {
		args := map[string]any{}
		if tc.in != nil {
			args["limit"] = tc.in
		}
		req := mcppkg.CallToolRequest{Params: mcppkg.CallToolParams{Arguments: args}}
		if got := limitArg(req); got != tc.want {
			t.Errorf("limit %v: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 3); got != "hél..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}
