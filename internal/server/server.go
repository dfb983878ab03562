// Package server exposes the document, render, assist and import
// operations over HTTP.
package server

import (
	"cvforge/internal/app"
	"cvforge/internal/assist"
	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/extract"
	"cvforge/internal/store"
)

// Server holds the HTTP server state and collaborators
type Server struct {
	AppConfig      *config.Config
	Session        *app.Session
	Assist         *assist.Service
	Extractor      extract.TextExtractor
	Store          store.Store
	APIKeys        map[string]bool
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	RateLimiter    *LimiterManager
	Logger         *errors.Logger

	version string
}

// NewServer creates a server around an already-loaded session
func NewServer(cfg *config.Config, session *app.Session, assistSvc *assist.Service, extractor extract.TextExtractor, st store.Store, logger *errors.Logger, version string) *Server {
	apiKeys := make(map[string]bool, len(cfg.Server.APIKeys))
	for _, key := range cfg.Server.APIKeys {
		if key != "" {
			apiKeys[key] = true
		}
	}

	var limiter *LimiterManager
	if cfg.Server.RateLimit.Enabled {
		limiter = NewLimiterManager(
			cfg.Server.RateLimit.RequestsPerMin,
			cfg.Server.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		AppConfig:      cfg,
		Session:        session,
		Assist:         assistSvc,
		Extractor:      extractor,
		Store:          st,
		APIKeys:        apiKeys,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
		RateLimiter:    limiter,
		Logger:         logger,
		version:        version,
	}
}

// language resolves the rendering language for a request, falling back
// to the configured application language.
func (s *Server) language(requested string) string {
	if requested != "" {
		return requested
	}
	return s.AppConfig.App.Language
}
