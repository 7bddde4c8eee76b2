package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"notevault/models"

	"github.com/rohanthewiz/rweb"
)

// ============================================================================
// Migration API
//
// Moving local data to the cloud takes two calls. prepare returns the record
// counts and a one-time token; commit must echo that token. The UI shows the
// counts in a confirmation dialog between the two calls.
// ============================================================================

// CommitInput is the body of the commit call.
type CommitInput struct {
	Token string `json:"token"`
}

// PrepareMigration handles POST /api/v1/migration/prepare
func (h *Handlers) PrepareMigration(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	plan, err := h.Store.PrepareMigration()
	if err != nil {
		return writeStoreError(ctx, err, "prepare migration")
	}
	return writeSuccess(ctx, http.StatusOK, plan)
}

// CommitMigration handles POST /api/v1/migration/commit
// A missing, stale or reused token yields 409 and nothing is written. When the
// records reached the cloud but the local copy could not be cleared, the
// response is a 500 that still carries the result with the committed count.
func (h *Handlers) CommitMigration(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	var input CommitInput
	if err := json.Unmarshal(ctx.Request().Body(), &input); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	opCtx, cancel := h.opContext()
	defer cancel()
	res, err := h.Store.Migrate(opCtx, input.Token)
	var migErr *models.MigrationError
	if errors.As(err, &migErr) && migErr.Phase == models.MigrationPhaseClearLocal {
		ctx.SetStatus(http.StatusInternalServerError)
		return ctx.WriteJSON(APIResponse{Success: false, Data: res, Error: migErr.Error()})
	}
	if err != nil {
		return writeStoreError(ctx, err, "migrate local data")
	}
	return writeSuccess(ctx, http.StatusOK, res)
}

// MigrationStatus is embedded in the status response.
type MigrationStatus struct {
	Available bool `json:"available"`
}

func migrationStatus(store *models.Store) MigrationStatus {
	return MigrationStatus{Available: !store.LocalOnly() && store.HasLocalData()}
}
