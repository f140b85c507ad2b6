package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kenjpais/diagram-generator/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file.dot]",
	Short: "Check DOT source or an intent document without rendering",
	Long: `Checks a DOT file with the configured validator tier, or a structured
intent document when --intent is given, and reports the first problem found.
Exits 0 when the input is valid, 1 when it is not.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd)
		opts.IntentPath, _ = cmd.Flags().GetString("intent")
		if len(args) > 0 {
			opts.SourcePath = args[0]
		}
		if opts.SourcePath == "" && opts.IntentPath == "" {
			fmt.Fprintln(os.Stderr, "Error: pass a DOT file or --intent")
			os.Exit(2)
		}

		valid, diagnostic, err := cli.RunValidate(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		if !valid {
			fmt.Printf("Invalid: %s\n", diagnostic)
			os.Exit(1)
		}
		fmt.Println("Valid.")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("intent", "", "Validate a structured intent document instead of DOT source (\"-\" for stdin)")
}
