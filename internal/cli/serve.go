package cli

import (
	"fmt"

	"cvforge/internal/app"
	"cvforge/internal/assist"
	"cvforge/internal/config"
	"cvforge/internal/extract"
	"cvforge/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for resume editing and content assist",
	Long: `Start an HTTP server that exposes the resume document over a REST API.

Available endpoints:
- GET/PUT /document: Read or replace the resume document
- POST /document/sections/{section}/items: Add a section item
- GET /score: Completeness score and breakdown
- GET /render: Project the document through the active template
- POST /assist/*: AI content assist operations
- POST /import: Import an uploaded resume file
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.mode", "tls-mode")
	bindFlag("server.tls.certfile", "cert-file")
	bindFlag("server.tls.keyfile", "key-file")
	bindFlag("server.tls.cafile", "ca-file")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	// Validate TLS configuration after applying overrides
	tempConfig := &config.Config{Server: cfg.Server}
	if err := tempConfig.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	st, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	session, err := app.NewSession(ctx, st, cfg.App.Premium, logger)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	assistSvc, err := assist.NewService(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create assist service: %w", err)
	}

	extractor := extract.NewDocconvExtractor(logger)

	return server.NewServer(cfg, session, assistSvc, extractor, st, logger, Version).Start()
}
