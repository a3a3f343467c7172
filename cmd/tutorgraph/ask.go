package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/tutorgraph/internal/cli"
	"github.com/aretw0/tutorgraph/internal/presentation/tui"
	"github.com/aretw0/tutorgraph/pkg/chat"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the tutor a single question",
	Example: `  tutorgraph ask "배열에서 중복된 숫자를 찾는 방법을 알려주세요"
  tutorgraph ask --graph enriched --code solution.py "이 코드의 시간 복잡도는?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := buildApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		graphName, _ := cmd.Flags().GetString("graph")
		sessionID, _ := cmd.Flags().GetString("session")
		codePath, _ := cmd.Flags().GetString("code")
		jsonOut, _ := cmd.Flags().GetBool("json")

		req := chat.Request{
			SessionID: sessionID,
			Message:   strings.Join(args, " "),
			Graph:     graphName,
		}
		if codePath != "" {
			data, err := os.ReadFile(codePath)
			if err != nil {
				return fmt.Errorf("failed to read code: %w", err)
			}
			req.Code = string(data)
		}

		opts := cli.AskOptions{JSON: jsonOut}
		if !jsonOut {
			opts.Render = tui.NewRenderer()
		}
		return cli.Ask(sigCtx, app, req, cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("graph", "g", "", "Topology: validation, enriched or tutoring (default chat.graph)")
	askCmd.Flags().String("session", "", "Session ID to continue")
	askCmd.Flags().String("code", "", "Path to a code file to discuss")
	askCmd.Flags().Bool("json", false, "Print the raw JSON response")
}
