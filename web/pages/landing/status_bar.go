package landing

import (
	"html"
	"strconv"

	"notevault/models"

	"github.com/rohanthewiz/element"
)

// StatusBar shows the cloud connection state and offers the migration of
// local data when some is still held on this device.
type StatusBar struct {
	Status    models.StatusReport
	LocalOnly bool
}

func statusLabel(s models.CloudStatus) string {
	switch s {
	case models.StatusConnected:
		return "Cloud connected"
	case models.StatusSyncing:
		return "Syncing..."
	case models.StatusError:
		return "Cloud error"
	case models.StatusOffline:
		return "Offline"
	default:
		return "Local only"
	}
}

// Render implements the element.Component interface
func (s StatusBar) Render(b *element.Builder) any {
	b.Footer("class", "status-bar").R(
		b.Div("class", "status-left").R(
			b.Div("class", "sync-status "+string(s.Status.Cloud), "id", "sync-status",
				"title", html.EscapeString(s.Status.LastError)).R(
				b.Span("id", "sync-status-text").T(statusLabel(s.Status.Cloud)),
			),
		),
		b.Div("class", "status-center").R(
			s.renderMigrate(b),
		),
		b.Div("class", "status-right").R(
			b.Span("class", "result-count").T(
				strconv.Itoa(s.Status.Categories)+" modules · "+strconv.Itoa(s.Status.Notes)+" notes"),
		),
	)
	return nil
}

// renderMigrate offers the migration only while local data remains.
func (s StatusBar) renderMigrate(b *element.Builder) (x any) {
	if s.LocalOnly || !s.Status.HasLocalData {
		return
	}
	b.Button("class", "btn btn-primary", "id", "btn-migrate", "onclick", "app.migrate()").
		T("Move local data to cloud")
	return
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
