package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port                         string
	GinMode                      string
	CORSAllowedOrigins           []string
	ServerShutdownTimeoutSeconds int

	// Logging
	LogLevel  string
	LogFormat string

	// Media
	MediaDir           string
	StoriesDir         string
	MediaRetention     time.Duration
	MediaSweepSchedule string

	// Generation
	ProviderTimeout       time.Duration
	SceneImageConcurrency int

	// Credentials. Providers read their keys through ProviderConfig.APIKey; these are kept
	// for the startup summary.
	OpenAIAPIKey      string
	GeminiAPIKey      string
	HuggingFaceAPIKey string

	// ConfigFile is the path the generation tiers were loaded from, empty for built-in defaults.
	ConfigFile string

	Generation *GenerationConfig `yaml:"generation"`
}

const defaultConfigFile = "config.yaml"

// LoadConfig reads .env, the environment and the optional YAML tier file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:                         getEnvOrDefault("PORT", "8080"),
		GinMode:                      getEnvOrDefault("GIN_MODE", "release"),
		CORSAllowedOrigins:           splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		ServerShutdownTimeoutSeconds: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 30),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),

		MediaDir:           getEnvOrDefault("MEDIA_DIR", "media"),
		StoriesDir:         getEnvOrDefault("STORIES_DIR", "stories"),
		MediaRetention:     getEnvAsDuration("MEDIA_RETENTION", 24*time.Hour),
		MediaSweepSchedule: getEnvOrDefault("MEDIA_SWEEP_SCHEDULE", "@every 1h"),

		ProviderTimeout:       getEnvAsDuration("PROVIDER_TIMEOUT", 60*time.Second),
		SceneImageConcurrency: getEnvAsInt("SCENE_IMAGE_CONCURRENCY", 3),

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		HuggingFaceAPIKey: os.Getenv("HUGGINGFACE_API_KEY"),
	}

	path, explicit := os.LookupEnv("CONFIG_FILE")
	if !explicit || path == "" {
		path = defaultConfigFile
	}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		log.Printf("Loading config file: %v", path)
		if err := LoadConfigFile(file, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		log.Printf("No %s found, using built-in generation tiers", path)
	default:
		return nil, fmt.Errorf("open config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fills defaults and checks cross-field constraints.
func (cfg *Config) Validate() error {
	if cfg.Generation == nil {
		cfg.Generation = &GenerationConfig{}
	}
	if err := cfg.Generation.Validate(); err != nil {
		return err
	}

	if cfg.SceneImageConcurrency < 1 {
		cfg.SceneImageConcurrency = 1
	}
	if cfg.ProviderTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be positive")
	}
	if cfg.MediaDir == "" {
		return errors.New("MEDIA_DIR must not be empty")
	}

	return nil
}

// Timeout returns the HTTP timeout for a provider, falling back to the global default.
func (cfg *Config) Timeout(p ProviderConfig) time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return cfg.ProviderTimeout
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		} else {
			log.Printf("Warning: Failed to parse environment variable %s='%s' as time.Duration, using default %v: %v", key, value, defaultValue, err)
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		} else {
			log.Printf("Warning: Failed to parse environment variable %s='%s' as int, using default %d: %v", key, value, defaultValue, err)
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func LoadConfigFile(reader io.Reader, config *Config) error {
	decoder := yaml.NewDecoder(reader)

	if err := decoder.Decode(config); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	return nil
}
