package illustration

import (
	"fmt"
	"log/slog"

	"github.com/eternisai/taleweaver/internal/config"
	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

// NewProvider builds the image provider for one configured tier.
func NewProvider(cfg *config.Config, p config.ProviderConfig) (pipeline.Provider[media.File], error) {
	switch p.Name {
	case PollinationsProviderName:
		return NewPollinations(p.BaseURL, cfg.Timeout(p)), nil
	case DallEProviderName:
		return NewDallE(p.APIKey, p.BaseURL, p.Model, cfg.Timeout(p)), nil
	case PlaceholderProviderName:
		return Placeholder{}, nil
	}
	return nil, fmt.Errorf("provider %q cannot draw images", p.Name)
}

// NewPipeline builds the image pipeline. Files are written to the store's image directory.
func NewPipeline(cfg *config.Config, store *media.Store, log *logger.Logger, opts ...pipeline.Option) (*pipeline.Pipeline[media.File], error) {
	var providers []pipeline.Provider[media.File]

	for _, p := range cfg.Generation.Tiers(config.ModalityImage).Providers {
		if !p.Usable() {
			log.Warn("skipping image provider without credentials",
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
		pipeline.WithWorkspaceDir(store.ImageDir()),
		pipeline.WithLogger(log),
	}, opts...)

	return pipeline.New[media.File](pipeline.ModalityImage, providers, Placeholder{}, opts...)
}
