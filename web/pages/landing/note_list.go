package landing

import (
	"html"
	"net/url"
	"strings"
	"time"

	"notevault/models"

	"github.com/rohanthewiz/element"
)

const previewRunes = 140

// NoteList is the center panel listing the filtered notes.
type NoteList struct {
	Notes      []models.Note
	Filter     models.NoteFilter
	Categories []models.Category
}

func (n NoteList) heading() string {
	switch n.Filter.ModuleID {
	case "":
		return "All notes"
	case models.UncategorizedModule:
		return "Uncategorized"
	}
	for _, c := range n.Categories {
		if c.ID == n.Filter.ModuleID {
			return c.Title
		}
	}
	return "Unknown module"
}

func (n NoteList) noteHref(id string) string {
	v := url.Values{}
	if n.Filter.ModuleID != "" {
		v.Set("module", n.Filter.ModuleID)
	}
	if n.Filter.Query != "" {
		v.Set("q", n.Filter.Query)
	}
	v.Set("note", id)
	return "/?" + v.Encode()
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if r := []rune(content); len(r) > previewRunes {
		return string(r[:previewRunes]) + "…"
	}
	return content
}

// Render implements the element.Component interface
func (n NoteList) Render(b *element.Builder) any {
	b.Main("class", "center-panel", "id", "center-panel").R(
		b.Div("class", "list-header").R(
			b.Span("class", "list-header-title").T(html.EscapeString(n.heading())),
			b.Span("class", "view-count").T(itoa(len(n.Notes))),
		),
		b.Div("class", "note-list", "id", "note-list").R(
			n.renderRows(b),
		),
	)
	return nil
}

func (n NoteList) renderRows(b *element.Builder) (x any) {
	if len(n.Notes) == 0 {
		b.Div("class", "empty-state", "id", "empty-state").R(
			b.H3("class", "empty-title").T("No notes here yet"),
			b.P("class", "empty-description").T("Pick a module and write your first note."),
		)
		return
	}

	element.ForEach(n.Notes, func(note models.Note) {
		b.A("class", "note-row", "data-id", note.ID, "href", n.noteHref(note.ID)).R(
			b.DivClass("note-title-row").R(
				b.SpanClass("note-kind").T(string(note.Kind)),
				b.SpanClass("note-title").T(html.EscapeString(note.Title)),
			),
			b.DivClass("note-tags").R(
				element.ForEach(note.Tags, func(tag string) {
					b.SpanClass("note-tag").T("#" + html.EscapeString(tag))
				}),
			),
			b.DivClass("note-preview").T(html.EscapeString(preview(note.Content))),
			b.SpanClass("note-timestamp").T(time.UnixMilli(note.CreatedAt).Format("2006-01-02 15:04")),
		)
	})
	return
}
