package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kenjpais/diagram-generator/internal/cli"
	"github.com/kenjpais/diagram-generator/internal/config"
	"github.com/kenjpais/diagram-generator/internal/logging"
	"github.com/kenjpais/diagram-generator/pkg/adapters/rest"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the generation pipeline behind a JSON API over HTTP. The wire
contract is served at /openapi.yaml, and Prometheus metrics at /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")
		cfg, err := config.Load(envFiles...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
			cfg.LogFormat = "json"
		}
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.HTTPAddr = addr
		}

		level := cfg.LogLevel
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level, cfg.LogFormat)

		app, err := cli.BuildApp(cmd.Context(), cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing pipeline: %v\n", err)
			os.Exit(2)
		}

		handler, err := rest.NewHandler(app.Pipeline, app.Store,
			rest.WithLogger(logger),
			rest.WithMetrics(app.Registry),
			rest.WithRenderDefaults(cfg.OutputDir, cfg.RenderFormat),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building API: %v\n", err)
			os.Exit(2)
		}

		srv := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("diagen server listening", "addr", srv.Addr, "provider", cfg.Provider)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides HTTP_ADDR)")
}
