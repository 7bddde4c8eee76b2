package landing

import (
	"html"
	"strings"

	"notevault/models"

	"github.com/rohanthewiz/element"
)

// PreviewPanel shows the selected note rendered from markdown, or the
// new-note form when no note is selected.
type PreviewPanel struct {
	Note            *models.Note
	ModuleID        string
	Categories      []models.Category
	AnalysisEnabled bool
}

// Render implements the element.Component interface
func (p PreviewPanel) Render(b *element.Builder) any {
	b.Aside("class", "right-panel", "id", "right-panel").R(
		p.renderContent(b),
	)
	return nil
}

func (p PreviewPanel) renderContent(b *element.Builder) (x any) {
	if p.Note != nil {
		p.renderNote(b)
		return
	}
	p.renderNewNote(b)
	return
}

func (p PreviewPanel) renderNote(b *element.Builder) {
	note := p.Note
	b.Div("class", "preview-panel", "id", "preview-mode", "data-id", note.ID).R(
		b.DivClass("preview-header").R(
			b.H1("class", "preview-title").T(html.EscapeString(note.Title)),
			b.Div("class", "preview-meta").R(
				b.SpanClass("note-kind").T(string(note.Kind)),
				b.SpanClass("note-tags").T(html.EscapeString(strings.Join(note.Tags, ", "))),
			),
		),
		b.DivClass("preview-body").R(
			b.Div("class", "markdown-content", "id", "preview-content").T(RenderMarkdown(note.Content)),
		),
		b.Div("class", "preview-footer").R(
			b.Button("class", "btn btn-secondary text-danger",
				"onclick", "app.deleteNote('"+note.ID+"')").T("Delete"),
		),
	)
}

func (p PreviewPanel) renderNewNote(b *element.Builder) {
	known := false
	for _, c := range p.Categories {
		if c.ID == p.ModuleID {
			known = true
			break
		}
	}
	if !known {
		b.DivClass("preview-panel").R(
			b.PClass("text-muted").T("Select a module to add notes, or pick a note to read it."),
		)
		return
	}

	b.Form("class", "edit-form", "id", "note-form", "onsubmit", "return app.createNote(event)").R(
		b.Input("type", "hidden", "id", "note-module", "value", p.ModuleID),
		b.TextArea("class", "edit-body", "id", "note-content", "rows", "14",
			"placeholder", "Write or paste study material. The first line becomes the title.",
			"required", "required").R(),
		b.DivClass("edit-field").R(
			b.Input("type", "text", "class", "edit-input", "id", "note-tags", "placeholder", "tag1, tag2"),
		),
		p.renderAnalyzeToggle(b),
		b.Button("type", "submit", "class", "btn btn-primary").T("Save note"),
	)
}

func (p PreviewPanel) renderAnalyzeToggle(b *element.Builder) (x any) {
	if !p.AnalysisEnabled {
		return
	}
	b.Label("class", "edit-label").R(
		b.Input("type", "checkbox", "id", "note-analyze"),
		b.Span().T(" Summarize with AI"),
	)
	return
}
