package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/salat/internal/app"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the day view and completion toggles over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := appOptions(false)
		opts.ConsoleLog = true
		return app.Serve(cmd.Context(), opts, serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default [server] addr)")
}
