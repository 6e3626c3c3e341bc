package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func loadTestConfig(t *testing.T) *Config {
	t.Helper()

	file, err := os.Open("testdata/config.yaml")
	if err != nil {
		t.Fatalf("Failed to open config file: %v", err)
	}
	defer file.Close()

	cfg := &Config{ProviderTimeout: time.Minute, MediaDir: "media"}
	if err := LoadConfigFile(file, cfg); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return cfg
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DALLE_API_KEY", "test-dalle-key")

	cfg := loadTestConfig(t)

	text := cfg.Generation.Text.Providers
	if len(text) != 2 || text[0].Name != "gemini" || text[1].Name != "openai" {
		t.Fatalf("Unexpected text tiers %+v", text)
	}
	if text[0].APIKey != "test-gemini-key" {
		t.Errorf("Expected gemini key from environment, got %q", text[0].APIKey)
	}
	if text[1].Usable() {
		t.Error("Expected openai tier without key to be unusable")
	}
	if got := cfg.Timeout(text[1]); got != 45*time.Second {
		t.Errorf("Expected 45s timeout, got %v", got)
	}
	if got := cfg.Timeout(text[0]); got != time.Minute {
		t.Errorf("Expected global timeout, got %v", got)
	}

	if len(cfg.Generation.Audio.Providers) != 0 {
		t.Errorf("Expected explicit empty audio tiers, got %+v", cfg.Generation.Audio.Providers)
	}

	image := cfg.Generation.Image.Providers
	if len(image) != 3 {
		t.Fatalf("Expected 3 image tiers, got %d", len(image))
	}
	if image[0].Timeout != 30*time.Second {
		t.Errorf("Expected pollinations default timeout 30s, got %v", image[0].Timeout)
	}
	if image[1].APIKeyEnvVar != "DALLE_API_KEY" || image[1].APIKey != "test-dalle-key" {
		t.Errorf("Expected dalle key from custom variable, got %+v", image[1])
	}
	if !image[2].Usable() || image[2].RequiresKey() {
		t.Error("Expected placeholder tier to be usable without a key")
	}
}

func TestValidateFillsDefaultTiers(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := &Config{ProviderTimeout: time.Minute, MediaDir: "media"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	want := map[string][]string{
		ModalityText:  {"openai", "gemini", "huggingface"},
		ModalityAudio: {"gtts", "openai-tts"},
		ModalityImage: {"pollinations", "dalle"},
	}
	for modality, names := range want {
		tiers := cfg.Generation.Tiers(modality)
		if len(tiers.Providers) != len(names) {
			t.Fatalf("%s: expected %v, got %+v", modality, names, tiers.Providers)
		}
		for i, name := range names {
			if tiers.Providers[i].Name != name {
				t.Errorf("%s tier %d: expected %s, got %s", modality, i, name, tiers.Providers[i].Name)
			}
		}
	}

	if cfg.Generation.Image.Providers[1].APIKey != "sk-test" {
		t.Error("Expected dalle to pick up OPENAI_API_KEY")
	}
	if cfg.SceneImageConcurrency != 1 {
		t.Errorf("Expected concurrency clamped to 1, got %d", cfg.SceneImageConcurrency)
	}
}

func TestLoadConfigFileRejectsBadTiers(t *testing.T) {
	tests := map[string]string{
		"unknown_provider": `
generation:
  text:
    providers:
      - name: claude
`,
		"wrong_modality": `
generation:
  audio:
    providers:
      - name: dalle
`,
		"duplicate": `
generation:
  image:
    providers:
      - name: pollinations
      - name: pollinations
`,
		"bad_url": `
generation:
  text:
    providers:
      - name: openai
        base_url: ftp://example.com
`,
		"missing_name": `
generation:
  text:
    providers:
      - model: gpt-4o
`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{ProviderTimeout: time.Minute, MediaDir: "media"}
			err := LoadConfigFile(strings.NewReader(doc), cfg)
			if err == nil {
				err = cfg.Validate()
			}
			if err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiers.yaml")
	doc := "generation:\n  text:\n    providers:\n      - name: huggingface\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090")
	t.Setenv("PROVIDER_TIMEOUT", "15s")
	t.Setenv("SCENE_IMAGE_CONCURRENCY", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://tales.example.com")
	t.Setenv("HUGGINGFACE_API_KEY", "hf-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.ProviderTimeout != 15*time.Second {
		t.Errorf("Expected 15s provider timeout, got %v", cfg.ProviderTimeout)
	}
	if cfg.SceneImageConcurrency != 3 {
		t.Errorf("Expected default concurrency for unparsable value, got %d", cfg.SceneImageConcurrency)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://tales.example.com" {
		t.Errorf("Unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ConfigFile != path {
		t.Errorf("Expected config file %s, got %s", path, cfg.ConfigFile)
	}
	if p := cfg.Generation.Text.Providers; len(p) != 1 || p[0].APIKey != "hf-test" {
		t.Errorf("Unexpected text tiers %+v", p)
	}
	if len(cfg.Generation.Audio.Providers) != 2 {
		t.Errorf("Expected default audio tiers, got %+v", cfg.Generation.Audio.Providers)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for a missing explicit config file")
	}
}

func TestTiersOfUnconfiguredModality(t *testing.T) {
	cfg := &GenerationConfig{}

	if tiers := cfg.Tiers(ModalityAudio); tiers == nil || len(tiers.Providers) != 0 {
		t.Errorf("Expected empty tiers, got %+v", tiers)
	}
	if tiers := cfg.Tiers("video"); tiers == nil || len(tiers.Providers) != 0 {
		t.Errorf("Expected empty tiers for unknown modality, got %+v", tiers)
	}
}
