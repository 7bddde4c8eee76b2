package landing

import (
	"html"

	"notevault/models"

	"github.com/rohanthewiz/element"
)

// Toolbar is the top bar with the search form and the logout action.
type Toolbar struct {
	Title  string
	Filter models.NoteFilter
}

// Render implements the element.Component interface
func (t Toolbar) Render(b *element.Builder) any {
	b.HeaderClass("toolbar").R(
		b.DivClass("toolbar-left").R(
			b.A("class", "brand", "href", "/").T(t.Title),
		),
		// Plain GET form so the filtered view is a shareable URL
		b.Form("class", "search-bar", "method", "get", "action", "/").R(
			b.Input("type", "hidden", "name", "module", "value", html.EscapeString(t.Filter.ModuleID)),
			b.Input("type", "text", "class", "search-bar-input", "id", "search-input", "name", "q",
				"value", html.EscapeString(t.Filter.Query), "placeholder", "Search titles and content...",
				"autocomplete", "off"),
			b.Button("type", "submit", "class", "btn btn-secondary").T("Search"),
		),
		b.DivClass("toolbar-right").R(
			b.Button("class", "btn btn-secondary", "onclick", "app.logout()").T("Logout"),
		),
	)
	return nil
}
