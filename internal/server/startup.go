package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cvforge/internal/observability"
	"cvforge/internal/resume"
	"cvforge/internal/store"
)

// Start runs the HTTP server until SIGINT or SIGTERM
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}

	s.startStoreWatcher()

	httpServer := s.setupHTTPServer(om)

	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer, om)
}

// initializeObservability sets up tracing and metrics
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.version)
	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return om, nil
}

// startStoreWatcher reloads the session when the store file changes
// outside this process.
func (s *Server) startStoreWatcher() {
	if !s.AppConfig.Store.Watch {
		return
	}
	fs, ok := s.Store.(*store.FileStore)
	if !ok {
		return
	}

	err := fs.Watch(func(doc resume.Document) {
		s.Logger.Info("Store file changed externally, reloading document")
		s.Session.Reload(doc)
	})
	if err != nil {
		s.Logger.LogError(err, "Failed to start store watcher")
	}
}

// setupHTTPServer builds the HTTP server with all routes and the
// otelhttp middleware wrapping the whole mux.
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	mux := http.NewServeMux()
	s.setupRoutes(mux, om)

	handler := om.HTTPMiddleware()(mux)

	addr := s.AppConfig.Server.Host + ":" + s.AppConfig.Server.Port
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.AppConfig.Server.ReadTimeout,
		WriteTimeout: s.AppConfig.Server.WriteTimeout,
		IdleTimeout:  s.AppConfig.Server.IdleTimeout,
	}
}

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}

	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
	}

	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}

	fmt.Printf("Store backend: %s\n", s.AppConfig.Store.Backend)
}

// startWithGracefulShutdown runs the server and handles shutdown signals
func (s *Server) startWithGracefulShutdown(httpServer *http.Server, om *observability.ObservabilityManager) error {
	serverErrors := make(chan error, 1)

	go func() {
		if httpServer.TLSConfig != nil {
			// Cert and key come from TLSConfig
			serverErrors <- httpServer.ListenAndServeTLS("", "")
		} else {
			serverErrors <- httpServer.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		s.Logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			s.Logger.LogError(err, "Graceful shutdown failed, forcing close")
			_ = httpServer.Close()
		}

		s.cleanup(ctx, om)
		return nil
	}
}

// cleanup releases server resources after shutdown
func (s *Server) cleanup(ctx context.Context, om *observability.ObservabilityManager) {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
	if fs, ok := s.Store.(*store.FileStore); ok {
		_ = fs.Close()
	}
	if s.Assist != nil {
		if err := s.Assist.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close assist service")
		}
	}
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shut down observability")
	}
}
