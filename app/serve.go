package app

import (
	"context"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"

	"notevault/web"
)

// Serve runs the web server until it fails or ctx is done.
func (a *App) Serve(ctx context.Context) error {
	srv := web.NewServer(rweb.ServerOptions{
		Address: a.Config.Address,
		Verbose: a.Config.LogLevel == "debug",
	}, web.Deps{Store: a.Store, Gate: a.Gate, SessionCtx: a.ctx})

	errCh := make(chan error, 1)
	go func() { errCh <- web.Run(srv, a.Config.Address) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		return nil
	}
}
