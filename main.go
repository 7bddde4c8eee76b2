package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"notevault/app"
	"notevault/models"

	"github.com/rohanthewiz/logger"
)

func main() {
	cfg, err := models.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	logger.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to start NoteVault: ", err)
	}
	defer a.Close()

	a.ResumeSession()
	if err := a.Serve(ctx); err != nil {
		logger.LogErr(err, "server stopped")
	}
}
