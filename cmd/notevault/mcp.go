package main

import (
	"github.com/spf13/cobra"

	"notevault/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the vault to agents over MCP stdio",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := loadApp(ctx)
		defer a.Close()

		if !a.Store.LocalOnly() {
			if err := a.Store.StartSession(a.Context()); err != nil {
				fatal("Failed to reach remote store", err)
			}
		}
		if err := mcpserver.ServeStdio(a.Store); err != nil {
			fatal("MCP server stopped", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
