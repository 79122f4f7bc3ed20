package services

import (
	"context"
	"errors"

	"github.com/arnold/smartgoals-api/internal/breakdown"
	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/logger"
)

// Global breakdown service. It reports ErrNotConfigured until InitAI
// finds provider credentials.
var AI = breakdown.NewService(nil, config.AIConfig{}, nil)

func InitAI(ctx context.Context, cfg config.AIConfig) *breakdown.Service {
	gen, err := breakdown.NewGenerator(ctx, cfg)
	switch {
	case errors.Is(err, breakdown.ErrNotConfigured):
		logger.L().Info("AI: no provider credentials, breakdown generation disabled", "provider", cfg.Provider)
	case err != nil:
		logger.L().Warn("AI: failed to initialize provider", "provider", cfg.Provider, "error", err)
		gen = nil
	default:
		logger.L().Info("AI: breakdown generation enabled", "provider", gen.Name())
	}
	AI = breakdown.NewService(gen, cfg, logger.L())
	return AI
}
