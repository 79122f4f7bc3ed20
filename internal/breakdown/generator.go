package breakdown

import (
	"context"
	"fmt"

	"github.com/arnold/smartgoals-api/internal/config"
)

// TextGenerator sends one chat prompt and returns the raw model text.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

// NewGenerator builds the generator for the configured provider.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (TextGenerator, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	switch cfg.Provider {
	case "deepseek":
		return NewDeepSeek(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.DeepSeekModel), nil
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
}
