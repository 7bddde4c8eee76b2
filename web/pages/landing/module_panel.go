package landing

import (
	"html"
	"net/url"
	"strconv"

	"notevault/models"

	"github.com/rohanthewiz/element"
)

// ModulePanel is the left sidebar listing categories with their note counts.
type ModulePanel struct {
	Categories []models.Category
	Counts     map[string]int
	ActiveID   string
}

func moduleHref(id string) string {
	if id == "" {
		return "/"
	}
	return "/?module=" + url.QueryEscape(id)
}

func (m ModulePanel) itemClass(id string) string {
	if m.ActiveID == id {
		return "module-item active"
	}
	return "module-item"
}

// Render implements the element.Component interface
func (m ModulePanel) Render(b *element.Builder) any {
	b.Aside("class", "left-panel", "id", "module-panel").R(
		b.DivClass("panel-header").R(
			b.SpanClass("panel-title").T("Modules"),
		),
		b.Ul("class", "module-list").R(
			b.Li("class", m.itemClass("")).R(
				b.A("href", moduleHref("")).T("All notes"),
			),
			element.ForEach(m.Categories, func(c models.Category) {
				b.Li("class", m.itemClass(c.ID), "data-id", c.ID).R(
					b.A("href", moduleHref(c.ID)).T(html.EscapeString(c.Title)),
					b.SpanClass("module-count").T(strconv.Itoa(m.Counts[c.ID])),
					b.Button("class", "btn-icon", "title", "Delete module",
						"onclick", "app.deleteModule('"+c.ID+"')").T("×"),
				)
			}),
			b.Li("class", m.itemClass(models.UncategorizedModule)).R(
				b.A("href", moduleHref(models.UncategorizedModule)).T("Uncategorized"),
			),
		),
		b.Form("class", "module-form", "onsubmit", "return app.createModule(event)").R(
			b.Input("type", "text", "class", "form-input", "id", "module-title",
				"placeholder", "New module...", "required", "required"),
			b.Button("type", "submit", "class", "btn btn-primary").T("+"),
		),
	)
	return nil
}
