// Package api holds the JSON handlers of the vault's HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"notevault/models"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Handlers serves the API over one store and access gate.
type Handlers struct {
	Store *models.Store
	Gate  *models.AccessGate
	// SessionCtx is the parent context of remote sessions started at login.
	// It outlives individual requests.
	SessionCtx context.Context
}

// NewHandlers creates the API handlers.
func NewHandlers(store *models.Store, gate *models.AccessGate, sessionCtx context.Context) *Handlers {
	if sessionCtx == nil {
		sessionCtx = context.Background()
	}
	return &Handlers{Store: store, Gate: gate, SessionCtx: sessionCtx}
}

// operationTimeout bounds remote writes made on behalf of a request.
const operationTimeout = 30 * time.Second

// opContext returns the context for one remote operation.
func (h *Handlers) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(h.SessionCtx, operationTimeout)
}

// writeSuccess sends a successful JSON response with data.
func writeSuccess(ctx rweb.Context, status int, data interface{}) error {
	ctx.SetStatus(status)
	return ctx.WriteJSON(APIResponse{Success: true, Data: data})
}

// writeError sends an error JSON response.
func writeError(ctx rweb.Context, status int, message string) error {
	ctx.SetStatus(status)
	return ctx.WriteJSON(APIResponse{Success: false, Error: message})
}

// writeStoreError maps store errors to HTTP statuses.
func writeStoreError(ctx rweb.Context, err error, action string) error {
	var migErr *models.MigrationError
	switch {
	case errors.Is(err, models.ErrValidation):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return writeError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		return writeError(ctx, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, models.ErrConfirmationRequired):
		return writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrRemoteUnavailable):
		return writeError(ctx, http.StatusConflict, "the vault runs in local-only mode")
	case errors.Is(err, models.ErrNotSynced):
		return writeError(ctx, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &migErr):
		return writeError(ctx, http.StatusBadGateway, migErr.Error())
	}

	logger.LogErr(err, "request failed", "action", action)
	return writeError(ctx, http.StatusBadGateway, "failed to "+action)
}

// isAuthenticated reads the flag set by the JWT middleware.
func isAuthenticated(ctx rweb.Context) bool {
	authed, _ := ctx.Get("authenticated").(bool)
	return authed
}

func requireAuth(ctx rweb.Context) bool {
	if isAuthenticated(ctx) {
		return true
	}
	_ = writeError(ctx, http.StatusUnauthorized, "authentication required")
	return false
}
