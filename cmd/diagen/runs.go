package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kenjpais/diagram-generator/internal/cli"
	"github.com/kenjpais/diagram-generator/internal/config"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse recorded runs",
	Long:  `List, inspect, and remove run records from the configured history store.`,
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		store := getRunStore(cmd)
		limit, _ := cmd.Flags().GetInt("limit")

		records, err := store.List(cmd.Context(), limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			fmt.Println("No runs recorded.")
			return
		}

		for _, rec := range records {
			status := string(rec.Status)
			if rec.Reason != "" {
				status = fmt.Sprintf("%s (%s)", status, rec.Reason)
			}
			fmt.Printf("%s  %s  attempts=%d  %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.ID, rec.Attempts, status)
		}
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run record as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getRunStore(cmd)

		rec, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading run '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling record: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Remove one or more run records",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getRunStore(cmd)
		hasError := false

		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed run '%s'\n", id)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsLsCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsRmCmd)

	runsLsCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
}

// getRunStore builds the history store the environment names, without
// touching a provider.
func getRunStore(cmd *cobra.Command) ports.RunStore {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	return cli.BuildRunStore(cfg)
}
