package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kenjpais/diagram-generator/internal/cli"
)

// generateCmd represents the single-shot generation command.
var generateCmd = &cobra.Command{
	Use:   "generate [request...]",
	Short: "Generate one diagram and exit",
	Long: `Runs one generation end to end: the request is extracted into a
structured intent, DOT source is generated and validated, and the accepted
source is rendered.

The request is either the positional arguments joined into one sentence, or
a structured intent document passed with --intent (use "-" for stdin). With
--output the artifacts get that base name; otherwise a timestamped name is
used.`,
	Example: `  diagen generate "a web service talking to postgres and redis"
  diagen generate --intent intent.json --output checkout_flow --format png`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd)
		opts.Request = strings.Join(args, " ")
		opts.IntentPath, _ = cmd.Flags().GetString("intent")
		opts.BaseName, _ = cmd.Flags().GetString("output")
		opts.OutputDir, _ = cmd.Flags().GetString("out-dir")
		opts.Format, _ = cmd.Flags().GetString("format")

		if err := cli.Execute(opts); err != nil {
			code := cli.ExitCode(err)
			if code > 1 {
				// Pipeline failures were already printed as a summary;
				// everything else still needs reporting.
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("intent", "", "Generate from a structured intent document instead of free text (\"-\" for stdin)")
	generateCmd.Flags().StringP("output", "o", "", "Base name for the artifact and source files")
	generateCmd.Flags().String("out-dir", "", "Output directory (overrides OUTPUT_DIR)")
	generateCmd.Flags().StringP("format", "f", "", "Artifact format: svg, png or pdf (overrides RENDER_FORMAT)")
}
