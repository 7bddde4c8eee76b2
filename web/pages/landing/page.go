// Package landing renders the vault's main page: categories on the left, the
// filtered note list in the middle and the selected note on the right.
package landing

import (
	"notevault/models"

	"github.com/rohanthewiz/element"
)

// Page holds everything the landing page shows. It is built per request from the store.
type Page struct {
	Title           string
	Categories      []models.Category
	Counts          map[string]int
	Notes           []models.Note
	Selected        *models.Note
	Filter          models.NoteFilter
	Status          models.StatusReport
	LocalOnly       bool
	AnalysisEnabled bool
}

// NewPage gathers the page data for the given filter and selected note id.
func NewPage(store *models.Store, filter models.NoteFilter, selectedID string) Page {
	p := Page{
		Title:           "NoteVault",
		Categories:      store.Categories(),
		Counts:          store.NoteCounts(),
		Notes:           store.Notes(filter),
		Filter:          filter,
		Status:          store.Status(),
		LocalOnly:       store.LocalOnly(),
		AnalysisEnabled: store.AnalysisEnabled(),
	}
	if selectedID != "" {
		if n, err := store.Note(selectedID); err == nil {
			p.Selected = &n
		}
	}
	return p
}

// Render generates the complete HTML for the landing page
func (p Page) Render() string {
	b := element.NewBuilder()

	b.Html("lang", "en").R(
		p.renderHead(b),
		p.renderBody(b),
	)

	return b.String()
}

func (p Page) renderHead(b *element.Builder) any {
	return b.Head().R(
		b.Meta("charset", "UTF-8"),
		b.Meta("name", "viewport", "content", "width=device-width, initial-scale=1.0"),
		b.Title().T(p.Title),
		b.Link("rel", "stylesheet", "href", "/static/css/app.css?v=1"),
	)
}

func (p Page) renderBody(b *element.Builder) any {
	return b.Body().R(
		b.Div("class", "app-container", "id", "app").R(
			element.RenderComponents(b, Toolbar{Title: p.Title, Filter: p.Filter}),
			b.DivClass("app-main").R(
				element.RenderComponents(b,
					ModulePanel{Categories: p.Categories, Counts: p.Counts, ActiveID: p.Filter.ModuleID},
					NoteList{Notes: p.Notes, Filter: p.Filter, Categories: p.Categories},
					PreviewPanel{
						Note:            p.Selected,
						ModuleID:        p.Filter.ModuleID,
						Categories:      p.Categories,
						AnalysisEnabled: p.AnalysisEnabled,
					},
				),
			),
			element.RenderComponents(b, StatusBar{Status: p.Status, LocalOnly: p.LocalOnly}),
		),
		b.Div("class", "toast-container", "id", "toast-container").R(),
		b.Script("src", "/static/js/app.js?v=1").R(),
	)
}
