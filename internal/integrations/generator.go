// Package integrations holds the content generators backing artifact generation.
package integrations

import (
	"fmt"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

// NewGenerator builds the generator selected by configuration
func NewGenerator(cfg config.GenerationConfig) (artifact.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, ""), nil
	case "gemini":
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiURL, cfg.GeminiModel, cfg.Timeout), nil
	case "template", "":
		return NewTemplateGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}
}
