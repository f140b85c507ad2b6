package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kenjpais/diagram-generator/internal/cli"
)

// renderCmd re-renders existing DOT source without involving a provider.
var renderCmd = &cobra.Command{
	Use:   "render <file.dot>",
	Short: "Render an existing DOT file",
	Long: `Renders a DOT file to the configured format without a provider, for
re-rendering the source a previous run left behind or hand-written diagrams.

With --watch the file is re-rendered whenever it changes on disk.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd)
		opts.SourcePath = args[0]
		opts.BaseName, _ = cmd.Flags().GetString("output")
		opts.OutputDir, _ = cmd.Flags().GetString("out-dir")
		opts.Format, _ = cmd.Flags().GetString("format")

		watch, _ := cmd.Flags().GetBool("watch")

		var err error
		if watch {
			err = cli.RunWatch(opts)
		} else {
			err = cli.RunRender(opts)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(cli.ExitCode(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("output", "o", "", "Base name for the artifact (defaults to the source file name)")
	renderCmd.Flags().String("out-dir", "", "Output directory (overrides OUTPUT_DIR)")
	renderCmd.Flags().StringP("format", "f", "", "Artifact format: svg, png or pdf (overrides RENDER_FORMAT)")
	renderCmd.Flags().BoolP("watch", "w", false, "Re-render whenever the file changes")
}
