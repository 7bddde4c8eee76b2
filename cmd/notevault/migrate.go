package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"notevault/tui"
)

var (
	migrateWait    time.Duration
	migrateTimeout time.Duration
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upload local data to the remote store after confirmation",
	Long: `Migrate waits until the remote store has delivered both collections,
shows how many modules and notes will be uploaded and asks for confirmation.
Local data is cleared only after the remote commit succeeded.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := loadApp(ctx)
		defer a.Close()

		if a.Store.LocalOnly() {
			fatal("Cannot migrate", fmt.Errorf("no remote store configured, set NOTEVAULT_MODE=cloud"))
		}
		if err := a.Store.StartSession(ctx); err != nil {
			fatal("Failed to reach remote store", err)
		}

		wctx, cancel := context.WithTimeout(ctx, migrateWait)
		err := a.Store.WaitSynced(wctx)
		cancel()
		if err != nil {
			fatal("Remote store did not deliver its data", err)
		}

		final, err := tui.RunMigrate(ctx, a.Store, migrateTimeout)
		if err != nil {
			fatal("Migration screen failed", err)
		}
		if final.Stage == tui.StageFailed {
			os.Exit(1)
		}
	},
}

func init() {
	migrateCmd.Flags().DurationVar(&migrateWait, "wait", 30*time.Second, "How long to wait for the remote snapshots")
	migrateCmd.Flags().DurationVar(&migrateTimeout, "timeout", time.Minute, "Upper bound for the remote commit")
	rootCmd.AddCommand(migrateCmd)
}
