package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kenjpais/diagram-generator/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "diagen",
	Short: "Diagen generates architecture diagrams from plain-language requests",
	Long: `Diagen turns a description of a system into a rendered diagram.

An LLM provider drafts Graphviz DOT source from the request, a syntax
validator checks every draft, and rejected drafts go back to the provider
with the diagnostic until the source parses or the attempt budget runs out.
Accepted source is rendered with the Graphviz toolchain, leaving two files
per run: the artifact and the DOT source it was rendered from.

Run without arguments on a terminal to start the interactive session.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Bare invocation: interactive session on a terminal, help otherwise.
		if term.IsTerminal(int(os.Stdin.Fd())) {
			if err := cli.RunREPL(baseOptions(cmd)); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(cli.ExitCode(err))
			}
			return
		}
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// baseOptions collects the persistent flags every command shares.
func baseOptions(cmd *cobra.Command) cli.RunOptions {
	debug, _ := cmd.Flags().GetBool("debug")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	return cli.RunOptions{
		Debug:    debug,
		JSONLogs: jsonLogs,
		EnvFiles: envFiles,
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON instead of text")
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "Env file(s) to load before reading the environment")
}
