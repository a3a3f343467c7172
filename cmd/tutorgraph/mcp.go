package main

import (
	"github.com/aretw0/tutorgraph/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the tutor to AI agents as MCP tools (ask_tutor, describe_graph).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := buildApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		return cli.ServeMCP(sigCtx, app, transport, addr)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().String("addr", ":8081", "Listen address for the sse transport")
}
