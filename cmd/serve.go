/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/longkey1/clippyai/internal/api"
	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/spf13/cobra"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP API",
	Long: `Serve the analysis service over HTTP.

Endpoints:
  GET  /health          liveness probe
  POST /analyze         analyze text or answer a follow-up
  POST /chat            continue a conversation
  GET  /sessions/{id}   export a conversation (?format=json|yaml|md)

The server listens on listen_addr (default 127.0.0.1:8000) and shuts down
gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if model != "" {
			cfg.Model = model
		}
		if listenAddr != "" {
			cfg.ListenAddr = listenAddr
		}

		logger := newLogger(os.Stderr, true)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		service, cleanup, err := newService(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		watchConfig(service, logger)

		logger.Info("starting clippy api", "addr", cfg.ListenAddr, "model", cfg.Model)
		return api.NewServer(cfg.ListenAddr, service, logger).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&model, "model", "m", "", "Model to use (format: provider:model, e.g., gemini:gemini-2.0-flash)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (overrides listen_addr)")
}
