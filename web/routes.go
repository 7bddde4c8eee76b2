package web

import (
	"net/http"

	"notevault/models"
	"notevault/web/api"
	"notevault/web/pages/auth"
	"notevault/web/pages/landing"

	"github.com/rohanthewiz/rweb"
)

// setupRoutes configures all application routes
func setupRoutes(s *rweb.Server, h *api.Handlers) {
	s.Get("/", func(ctx rweb.Context) error {
		ctx.Response().SetHeader("Content-Type", "text/html; charset=utf-8")
		authed, _ := ctx.Get("authenticated").(bool)
		if !authed {
			return ctx.WriteHTML(auth.NewLoginPage().Render())
		}

		req := ctx.Request()
		filter := models.NoteFilter{
			ModuleID: req.QueryParam("module"),
			Query:    req.QueryParam("q"),
		}
		return ctx.WriteHTML(landing.NewPage(h.Store, filter, req.QueryParam("note")).Render())
	})

	s.Get("/health", api.Health)

	// Access gate
	s.Post("/api/v1/auth/login", LoginRateLimit(10, h.Login))
	s.Post("/api/v1/auth/logout", h.Logout)
	s.Get("/api/v1/status", h.Status)

	// Categories ("modules")
	s.Get("/api/v1/modules", h.ListCategories)
	s.Post("/api/v1/modules", h.CreateCategory)
	s.Put("/api/v1/modules/:id", h.RenameCategory)
	s.Delete("/api/v1/modules/:id", h.DeleteCategory)

	// Notes ("items")
	s.Get("/api/v1/notes", h.ListNotes)
	s.Post("/api/v1/notes", h.CreateNote)
	s.Get("/api/v1/notes/:id", h.GetNote)
	s.Put("/api/v1/notes/:id", h.UpdateNote)
	s.Delete("/api/v1/notes/:id", h.DeleteNote)

	// Local-to-cloud migration, always two calls
	s.Post("/api/v1/migration/prepare", h.PrepareMigration)
	s.Post("/api/v1/migration/commit", h.CommitMigration)

	s.Get("/logout", func(ctx rweb.Context) error {
		_ = h.Logout(ctx)
		ctx.Response().SetHeader("Location", "/")
		ctx.SetStatus(http.StatusSeeOther)
		return nil
	})
}
