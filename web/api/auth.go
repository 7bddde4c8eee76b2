package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"notevault/models"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
)

// TokenCookie holds the access token for browser clients.
const TokenCookie = "notevault_token"

// LoginInput is the login request body.
type LoginInput struct {
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token  string              `json:"token"`
	Status models.StatusReport `json:"status"`
}

// Login handles POST /api/v1/auth/login.
// A correct password yields a token and starts the remote session, so both
// collections begin streaming into the store.
func (h *Handlers) Login(ctx rweb.Context) error {
	var input LoginInput
	if err := json.Unmarshal(ctx.Request().Body(), &input); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if input.Password == "" {
		return writeError(ctx, http.StatusBadRequest, "password is required")
	}

	token, err := h.Gate.Login(input.Password)
	if errors.Is(err, models.ErrUnauthorized) {
		logger.Info("Login rejected")
		return writeError(ctx, http.StatusUnauthorized, "invalid password")
	}
	if err != nil {
		logger.LogErr(serr.Wrap(err, "failed to issue token"))
		return writeError(ctx, http.StatusInternalServerError, "login failed")
	}

	if err := ctx.SetCookie(TokenCookie, token); err != nil {
		logger.LogErr(err, "failed to set token cookie")
	}

	if !h.Store.LocalOnly() {
		if err := h.Store.StartSession(h.SessionCtx); err != nil {
			// The login itself succeeded; the status bar shows the degraded connection.
			logger.LogErr(err, "remote session could not be started")
		}
	}

	return writeSuccess(ctx, http.StatusOK, LoginResponse{Token: token, Status: h.Store.Status()})
}

// Logout handles POST /api/v1/auth/logout. It releases the remote
// subscriptions and forgets the device authentication.
func (h *Handlers) Logout(ctx rweb.Context) error {
	h.Store.EndSession()
	if err := h.Gate.Logout(); err != nil {
		logger.LogErr(err, "logout could not clear device flag")
	}
	if err := ctx.SetCookie(TokenCookie, ""); err != nil {
		logger.LogErr(err, "failed to clear token cookie")
	}
	return writeSuccess(ctx, http.StatusOK, map[string]bool{"loggedOut": true})
}
