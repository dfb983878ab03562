package assist

import (
	"context"
	"fmt"

	"cvforge/internal/config"
	"cvforge/internal/errors"
)

// Service wraps a Provider with construction-time configuration
type Service struct {
	Provider Provider // Exported for access from server package
	logger   *errors.Logger
}

// NewService creates a gateway service from configuration
func NewService(cfg *config.Config, logger *errors.Logger) (*Service, error) {
	var provider Provider
	var err error

	logger.Debug("Initializing content assist service",
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model)

	switch cfg.AI.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.AI.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{Provider: provider, logger: logger}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases the underlying provider
func (s *Service) Close() error {
	return s.Provider.Close()
}
