package main

import "github.com/spf13/cobra"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web app",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := loadApp(ctx)
		defer a.Close()

		a.ResumeSession()
		if err := a.Serve(ctx); err != nil {
			fatal("Server stopped", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
