package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the settings, prompt pack and graphs",
	Long:  `Loads the settings file, compiles every topology against the reducer table and parses the prompt templates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildOffline(cmd.Context(), cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer app.Close()

		for _, name := range app.Engine.Graphs().Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s ok\n", name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
