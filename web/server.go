package web

import (
	"context"

	"notevault/models"
	"notevault/web/api"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Store *models.Store
	Gate  *models.AccessGate
	// SessionCtx bounds remote sessions started by a login. Cancelling it
	// stops them together with the server.
	SessionCtx context.Context
}

// NewServer creates and configures the RWeb server
func NewServer(opts rweb.ServerOptions, deps Deps) *rweb.Server {
	s := rweb.NewServer(opts)

	s.Use(rweb.RequestInfo)
	s.Use(CorsMiddleware)
	s.Use(SecurityHeadersMiddleware)
	s.Use(JWTAuthMiddleware(deps.Gate))
	s.Use(LoggingMiddleware)

	h := api.NewHandlers(deps.Store, deps.Gate, deps.SessionCtx)
	setupRoutes(s, h)
	SetupStaticFiles(s)

	return s
}

// NewTestServer builds a server for integration tests. Callers pass
// Address "localhost:" for a dynamic port and a ReadyChan to wait on.
func NewTestServer(opts rweb.ServerOptions, deps Deps) *rweb.Server {
	return NewServer(opts, deps)
}

// Run starts the server
func Run(s *rweb.Server, address string) error {
	logger.Info("NoteVault web server starting", "address", address)
	return s.Run()
}
