package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	statusJSON bool
	statusWait time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local data and, in cloud mode, remote sync state",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := loadApp(ctx)
		defer a.Close()

		if !a.Store.LocalOnly() {
			if err := a.Store.StartSession(ctx); err != nil {
				fatal("Failed to reach remote store", err)
			}
			wctx, cancel := context.WithTimeout(ctx, statusWait)
			if err := a.Store.WaitSynced(wctx); err != nil {
				fmt.Println("Remote store did not answer within", statusWait)
			}
			cancel()
		}

		report := a.Store.Status()
		if statusJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				fatal("Failed to encode status", err)
			}
			fmt.Println(string(out))
			return
		}

		fmt.Println("Mode:          ", a.Config.Mode)
		fmt.Println("Cloud status:  ", report.Cloud)
		fmt.Println("Synced:        ", report.Synced)
		fmt.Println("Local data:    ", report.HasLocalData)
		fmt.Println("Modules:       ", report.Categories)
		fmt.Println("Notes:         ", report.Notes)
		if report.LastError != "" {
			fmt.Println("Last error:    ", report.LastError)
		}
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the status as JSON")
	statusCmd.Flags().DurationVar(&statusWait, "wait", 10*time.Second, "How long to wait for the remote snapshots")
	rootCmd.AddCommand(statusCmd)
}
