package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [name]",
	Short: "Export a topology as a Mermaid diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of the named topology, or lists the topologies when no name is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildOffline(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		graphs := app.Engine.Graphs()
		if len(args) == 0 {
			for _, name := range graphs.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}

		def, err := graphs.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), def.Mermaid(nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
