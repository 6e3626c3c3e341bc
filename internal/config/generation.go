package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Modalities served by the generation pipelines.
const (
	ModalityText  = "text"
	ModalityAudio = "audio"
	ModalityImage = "image"
)

// providerSpec describes a provider implementation known to the service.
type providerSpec struct {
	modality string
	// envVar holds the credential; empty for providers that need none.
	envVar string
	// timeout overrides the global provider timeout when the config leaves it unset.
	timeout time.Duration
}

var knownProviders = map[string]providerSpec{
	"openai":       {modality: ModalityText, envVar: "OPENAI_API_KEY"},
	"gemini":       {modality: ModalityText, envVar: "GEMINI_API_KEY"},
	"huggingface":  {modality: ModalityText, envVar: "HUGGINGFACE_API_KEY"},
	"gtts":         {modality: ModalityAudio, timeout: 30 * time.Second},
	"openai-tts":   {modality: ModalityAudio, envVar: "OPENAI_API_KEY"},
	"pollinations": {modality: ModalityImage, timeout: 30 * time.Second},
	"dalle":        {modality: ModalityImage, envVar: "OPENAI_API_KEY"},
	"placeholder":  {modality: ModalityImage},
}

// defaultTiers is the tier order used when a modality is absent from the config file.
var defaultTiers = map[string][]string{
	ModalityText:  {"openai", "gemini", "huggingface"},
	ModalityAudio: {"gtts", "openai-tts"},
	ModalityImage: {"pollinations", "dalle"},
}

// GenerationConfig holds the tier lists of the three pipelines.
type GenerationConfig struct {
	Text  *TierConfig `yaml:"text,omitempty"`
	Audio *TierConfig `yaml:"audio,omitempty"`
	Image *TierConfig `yaml:"image,omitempty"`
}

// Validate performs validation of a GenerationConfig value:
// - Fills absent modalities with the built-in tier order
// - Checks that every provider serves the modality it is listed under
func (cfg *GenerationConfig) Validate() error {
	for _, m := range []struct {
		modality string
		tiers    **TierConfig
	}{
		{ModalityText, &cfg.Text},
		{ModalityAudio, &cfg.Audio},
		{ModalityImage, &cfg.Image},
	} {
		if *m.tiers == nil {
			tiers, err := defaultTierConfig(m.modality)
			if err != nil {
				return err
			}
			*m.tiers = tiers
		}

		for _, p := range (*m.tiers).Providers {
			if spec := knownProviders[p.Name]; spec.modality != m.modality {
				return fmt.Errorf("provider %q cannot serve %s generation", p.Name, m.modality)
			}
		}
	}

	return nil
}

// Tiers returns the tier config of a modality. A modality that was never configured has
// no tiers.
func (cfg *GenerationConfig) Tiers(modality string) *TierConfig {
	var tiers *TierConfig
	switch modality {
	case ModalityText:
		tiers = cfg.Text
	case ModalityAudio:
		tiers = cfg.Audio
	case ModalityImage:
		tiers = cfg.Image
	}
	if tiers == nil {
		return &TierConfig{}
	}
	return tiers
}

func defaultTierConfig(modality string) (*TierConfig, error) {
	tiers := &TierConfig{}
	for _, name := range defaultTiers[modality] {
		p := ProviderConfig{Name: name}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		tiers.Providers = append(tiers.Providers, p)
	}
	return tiers, nil
}

// TierConfig is the ordered provider list of one pipeline. An empty list is valid: the
// pipeline then serves every request from its local fallback.
type TierConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// Validate performs validation of a TierConfig value:
// - Checks for duplicate providers
func (cfg *TierConfig) Validate() error {
	seen := make(map[string]struct{}, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate configuration entry for provider %v", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

func unmarshalTierConfig(value *TierConfig, data []byte) error {
	type Aux TierConfig
	var aux Aux

	if err := yaml.Unmarshal(data, &aux); err != nil {
		return err
	}

	*value = TierConfig(aux)

	return value.Validate()
}

// ProviderConfig configures one tier.
type ProviderConfig struct {
	// Name selects the provider implementation (openai, gemini, gtts, pollinations, ...).
	Name string `yaml:"name"`

	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`

	// BaseURL overrides the provider's API endpoint. Must be a valid URL if present.
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout bounds a single attempt. Zero uses the provider default or PROVIDER_TIMEOUT.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// APIKeyEnvVar names the environment variable holding the credential. Defaults to the
	// provider's conventional variable.
	APIKeyEnvVar string `yaml:"api_key_env_var,omitempty"`

	// APIKey is read from the environment using APIKeyEnvVar. Explicit config values are ignored.
	APIKey string `yaml:"-"`
}

// Validate performs validation of a ProviderConfig value:
// - Checks that the provider is known
// - Verifies BaseURL is a valid URL
// - Fetches APIKey value from the environment using APIKeyEnvVar
func (cfg *ProviderConfig) Validate() error {
	if cfg.Name == "" {
		return errors.New("provider name must be specified in tier configuration")
	}

	spec, ok := knownProviders[cfg.Name]
	if !ok {
		return fmt.Errorf("unknown provider %q", cfg.Name)
	}

	if err := validateURLString(cfg.BaseURL); err != nil {
		return err
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("provider %s: timeout must not be negative", cfg.Name)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = spec.timeout
	}

	if cfg.APIKeyEnvVar == "" {
		cfg.APIKeyEnvVar = spec.envVar
	}
	if cfg.APIKeyEnvVar != "" {
		cfg.APIKey = os.Getenv(cfg.APIKeyEnvVar)
	}

	return nil
}

// RequiresKey reports whether the provider cannot run without a credential.
func (cfg *ProviderConfig) RequiresKey() bool {
	return knownProviders[cfg.Name].envVar != ""
}

// Usable reports whether the tier should be built: keyless providers always are,
// credentialed ones only when their key is set.
func (cfg *ProviderConfig) Usable() bool {
	return !cfg.RequiresKey() || cfg.APIKey != ""
}

func unmarshalProviderConfig(value *ProviderConfig, data []byte) error {
	type Aux ProviderConfig
	var aux Aux

	if err := yaml.Unmarshal(data, &aux); err != nil {
		return err
	}

	*value = ProviderConfig(aux)

	return value.Validate()
}

func init() {
	yaml.RegisterCustomUnmarshaler[TierConfig](unmarshalTierConfig)
	yaml.RegisterCustomUnmarshaler[ProviderConfig](unmarshalProviderConfig)
}

// validateURLString performs basic sanity checks of a string that should contain a valid URL.
// Empty strings are ignored.
func validateURLString(str string) error {
	if str == "" {
		return nil
	}

	u, err := url.Parse(str)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("URL does not contain a hostname")
	}

	return nil
}
