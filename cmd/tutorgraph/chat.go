package main

import (
	"os"

	"github.com/aretw0/tutorgraph/internal/cli"
	"github.com/aretw0/tutorgraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the tutor in the terminal",
	Long: `Starts an interactive session. Type a question and press enter.

Commands:
  /code <file>   attach a code file to the following questions
  /clear         detach the code
  /graph <name>  switch topology
  /quit          leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := buildApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		graphName, _ := cmd.Flags().GetString("graph")
		userID, _ := cmd.Flags().GetString("user")
		topics, _ := cmd.Flags().GetStringSlice("topic")
		persona, _ := cmd.Flags().GetString("persona")
		quiet, _ := cmd.Flags().GetBool("quiet")

		opts := cli.ChatOptions{
			Graph:   graphName,
			UserID:  userID,
			Topics:  topics,
			Persona: persona,
			Quiet:   quiet,
		}
		if !quiet {
			tui.PrintBanner(cmd.OutOrStdout(), version())
			opts.Render = tui.NewRenderer()
		}
		return cli.RunChat(sigCtx, app, os.Stdin, cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("graph", "g", "", "Topology: validation, enriched or tutoring (default chat.graph)")
	chatCmd.Flags().String("user", "", "Open a session for this user ID")
	chatCmd.Flags().StringSlice("topic", []string{"algorithms"}, "Session topics (with --user)")
	chatCmd.Flags().String("persona", "friendly", "Tutor persona (with --user)")
	chatCmd.Flags().BoolP("quiet", "q", false, "Plain output without banner or Markdown rendering")
}
