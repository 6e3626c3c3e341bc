package story

import (
	"fmt"
	"log/slog"

	"github.com/eternisai/taleweaver/internal/config"
	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

// NewProvider builds the text provider for one configured tier.
func NewProvider(cfg *config.Config, p config.ProviderConfig) (pipeline.Provider[Story], error) {
	switch p.Name {
	case OpenAIProviderName:
		return NewOpenAI(p.APIKey, p.BaseURL, p.Model, cfg.Timeout(p)), nil
	case GeminiProviderName:
		return NewGemini(p.APIKey, p.Model), nil
	case HuggingFaceProviderName:
		return NewHuggingFace(p.APIKey, p.BaseURL, p.Model, cfg.Timeout(p)), nil
	}
	return nil, fmt.Errorf("provider %q cannot write stories", p.Name)
}

// NewPipeline builds the text pipeline from the configured tiers. Tiers whose credential is
// missing are skipped; the template fallback is always present.
func NewPipeline(cfg *config.Config, log *logger.Logger, opts ...pipeline.Option) (*pipeline.Pipeline[Story], error) {
	var providers []pipeline.Provider[Story]

	for _, p := range cfg.Generation.Tiers(config.ModalityText).Providers {
		if !p.Usable() {
			log.Warn("skipping text provider without credentials",
				slog.String("provider", p.Name),
				slog.String("env_var", p.APIKeyEnvVar),
			)
			continue
		}

		provider, err := NewProvider(cfg, p)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}

	opts = append([]pipeline.Option{
		pipeline.WithValidator(Validate),
		pipeline.WithLogger(log),
	}, opts...)

	return pipeline.New[Story](pipeline.ModalityText, providers, Template{}, opts...)
}
