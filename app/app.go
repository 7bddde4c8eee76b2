// Package app wires configuration, storage and the store together for the
// server and the command line tools.
package app

import (
	"context"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"notevault/analysis"
	"notevault/localstore"
	"notevault/models"
	"notevault/remote"
)

const (
	connectTimeout    = 15 * time.Second
	disconnectTimeout = 5 * time.Second
)

// App holds the running collaborators. Close releases them.
type App struct {
	Config *models.Config
	Store  *models.Store
	Gate   *models.AccessGate

	local  *localstore.DuckDB
	mongo  *remote.Mongo
	ctx    context.Context
	cancel context.CancelFunc
}

// New opens local storage, connects the remote store in cloud mode and loads
// the device-local data into the store. Remote sessions are not started.
func New(ctx context.Context, cfg *models.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	local, err := localstore.OpenDuckDB(cfg.LocalDB)
	if err != nil {
		return nil, serr.Wrap(err, "failed to open local storage")
	}

	a := &App{Config: cfg, local: local}
	a.ctx, a.cancel = context.WithCancel(ctx)

	var rs models.RemoteStore
	if cfg.Mode == models.ModeCloud {
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		a.mongo, err = remote.ConnectMongo(cctx, remote.MongoOptions{
			URI:          cfg.Mongo.URI,
			Database:     cfg.Mongo.Database,
			Transactions: cfg.Mongo.Transactions,
			PollInterval: cfg.Mongo.PollInterval,
		})
		cancel()
		if err != nil {
			a.Close()
			return nil, err
		}
		rs = a.mongo
	}

	opts := []models.StoreOption{models.WithConfirmationTTL(cfg.MigrationConfirmTTL)}
	if cfg.Gemini.APIKey != "" {
		g, err := analysis.NewGemini(ctx, cfg.Gemini)
		if err != nil {
			logger.LogErr(err, "AI analysis disabled")
		} else {
			opts = append(opts, models.WithAnalyzer(g, cfg.Gemini.Timeout))
		}
	}
	a.Store = models.NewStore(local, rs, opts...)

	a.Gate, err = models.NewAccessGate(cfg.Access, local, 0)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Store.LoadLocal()
	logger.Info("NoteVault ready", "mode", string(cfg.Mode), "local_db", cfg.LocalDB,
		"analysis", a.Store.AnalysisEnabled())
	return a, nil
}

// Context is cancelled by Close. Remote sessions hang off it.
func (a *App) Context() context.Context {
	return a.ctx
}

// ResumeSession starts the remote session when this device logged in before.
func (a *App) ResumeSession() {
	if a.Store.LocalOnly() || !a.Gate.DeviceAuthenticated() {
		return
	}
	if err := a.Store.StartSession(a.ctx); err != nil {
		logger.LogErr(err, "could not resume remote session")
	}
}

// Close ends the remote session and releases storage.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.EndSession()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		if err := a.mongo.Close(ctx); err != nil {
			logger.LogErr(err, "failed to disconnect remote store")
		}
		cancel()
	}
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			logger.LogErr(err, "failed to close local storage")
		}
	}
}
