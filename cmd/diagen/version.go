package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	diagen "github.com/kenjpais/diagram-generator"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of diagen",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("diagen version %s\n", strings.TrimSpace(diagen.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
