package narration

import (
	"fmt"
	"log/slog"

	"github.com/eternisai/taleweaver/internal/config"
	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

// NewProvider builds the speech provider for one configured tier.
func NewProvider(cfg *config.Config, p config.ProviderConfig) (pipeline.Provider[media.File], error) {
	switch p.Name {
	case GTTSProviderName:
		return NewGTTS(p.BaseURL, cfg.Timeout(p)), nil
	case OpenAIProviderName:
		return NewOpenAI(p.APIKey, p.BaseURL, p.Model, cfg.Timeout(p)), nil
	}
	return nil, fmt.Errorf("provider %q cannot narrate", p.Name)
}

// NewPipeline builds the audio pipeline. Files are written to the store's audio directory.
func NewPipeline(cfg *config.Config, store *media.Store, log *logger.Logger, opts ...pipeline.Option) (*pipeline.Pipeline[media.File], error) {
	var providers []pipeline.Provider[media.File]

	for _, p := range cfg.Generation.Tiers(config.ModalityAudio).Providers {
		if !p.Usable() {
			log.Warn("skipping audio provider without credentials",
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
		pipeline.WithWorkspaceDir(store.AudioDir()),
		pipeline.WithLogger(log),
	}, opts...)

	return pipeline.New[media.File](pipeline.ModalityAudio, providers, Tone{}, opts...)
}
