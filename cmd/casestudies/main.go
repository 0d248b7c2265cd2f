// Command casestudies runs the case studies from a terminal UI, serves the
// shared stats store over HTTP, and searches the weather from the command
// line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var a app

	rootCmd := &cobra.Command{
		Use:   "casestudies",
		Short: "Run the composable case studies",
		Long: `casestudies hosts the composable case studies.

  tui     counter and shared stats in the terminal
  serve   the shared stats store over HTTP and websocket
  search  a one-shot weather search`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default $HOME/.config/composable/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.offline, "offline", false, "use the offline fact and weather clients")

	rootCmd.AddCommand(
		tuiCmd(&a),
		serveCmd(&a),
		searchCmd(&a),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
