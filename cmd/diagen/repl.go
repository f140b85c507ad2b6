package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kenjpais/diagram-generator/internal/cli"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive session",
	Long: `Starts the interactive session: each line is a diagram request, and the
outcome is printed with the artifact paths. Slash commands (/help, /history,
/clear, /exit) control the session.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.RunREPL(baseOptions(cmd)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(cli.ExitCode(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
