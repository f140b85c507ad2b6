package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kenjpais/diagram-generator/internal/cli"
	"github.com/kenjpais/diagram-generator/internal/config"
	"github.com/kenjpais/diagram-generator/internal/logging"
	"github.com/kenjpais/diagram-generator/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the pipeline as an MCP server, so AI agents can generate and
validate diagrams as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		envFiles, _ := cmd.Flags().GetStringSlice("env-file")
		cfg, err := config.Load(envFiles...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger := logging.New(cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(logger)

		app, err := cli.BuildApp(cmd.Context(), cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing pipeline: %v\n", err)
			os.Exit(2)
		}

		srv := mcp.NewServer(app.Pipeline, app.Validator,
			mcp.WithLogger(logger),
			mcp.WithStore(app.Store),
			mcp.WithRenderDefaults(cfg.OutputDir, cfg.RenderFormat),
		)

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			slog.Info("starting MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("starting MCP server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					slog.Error("MCP server execution failed", "err", err)
					os.Exit(1)
				}
			}
			slog.Info("MCP server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
