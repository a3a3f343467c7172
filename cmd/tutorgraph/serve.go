package main

import (
	"github.com/aretw0/tutorgraph/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves the chat and session endpoints under /api/v1, plus /health, /info, /openapi.yaml, /swagger and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := buildApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Settings.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		return cli.Serve(sigCtx, app, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides server.addr)")
}
