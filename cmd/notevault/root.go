package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohanthewiz/logger"
	"github.com/spf13/cobra"

	"notevault/app"
	"notevault/models"
)

var (
	verbose    bool
	configPath string
	localDB    string
)

var rootCmd = &cobra.Command{
	Use:   "notevault",
	Short: "A study-notes vault that keeps local data until the cloud has it",
	Long: `NoteVault stores modules and notes on this device and, in cloud mode,
in a MongoDB database. Local data is migrated to the cloud only after an
explicit confirmation.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			_ = os.Setenv("NOTEVAULT_CONFIG", configPath)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the context every command runs with.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&localDB, "local-db", "", "Override the local database path")
}

// loadApp reads configuration and opens the app. The caller closes it.
func loadApp(ctx context.Context) *app.App {
	cfg, err := models.LoadConfig()
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	if localDB != "" {
		cfg.LocalDB = localDB
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	logger.SetLogLevel(cfg.LogLevel)

	a, err := app.New(ctx, cfg)
	if err != nil {
		fatal("Failed to open vault", err)
	}
	return a
}
