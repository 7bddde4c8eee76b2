package api

import (
	"net/http"

	"notevault/models"

	"github.com/rohanthewiz/rweb"
)

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	models.StatusReport
	LocalOnly       bool            `json:"localOnly"`
	AnalysisEnabled bool            `json:"analysisEnabled"`
	Migration       MigrationStatus `json:"migration"`
}

// Status handles GET /api/v1/status
// Unauthenticated callers only learn whether they are logged in.
func (h *Handlers) Status(ctx rweb.Context) error {
	if !isAuthenticated(ctx) {
		return writeSuccess(ctx, http.StatusOK, map[string]bool{"authenticated": false})
	}
	return writeSuccess(ctx, http.StatusOK, StatusResponse{
		StatusReport:    h.Store.Status(),
		LocalOnly:       h.Store.LocalOnly(),
		AnalysisEnabled: h.Store.AnalysisEnabled(),
		Migration:       migrationStatus(h.Store),
	})
}

// Health handles GET /health
func Health(ctx rweb.Context) error {
	return writeSuccess(ctx, http.StatusOK, map[string]string{"status": "ok"})
}
