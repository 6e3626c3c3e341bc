package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eternisai/taleweaver/internal/config"
	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/eternisai/taleweaver/internal/media"
)

var (
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "taleweaver",
	Short: "Cultural story generator with narration and illustrations",
	Long: `Taleweaver writes culturally grounded stories, narrates them and illustrates their
scenes. Each modality tries its configured providers in order and always ends with a
local fallback, so a story is produced even with no network access.

Providers:
  text   openai, gemini, huggingface  (fallback: template)
  audio  gtts, openai-tts             (fallback: tone)
  image  pollinations, dalle          (fallback: placeholder)

Tiers are read from config.yaml (or CONFIG_FILE); credentials from the environment.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (text, json); overrides LOG_FORMAT")
}

// setup loads configuration and builds the logger and media store shared by every command.
func setup() (*config.Config, *logger.Logger, *media.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if logFormatFlag != "" {
		cfg.LogFormat = logFormatFlag
	}

	log := logger.New(logger.FromConfig(cfg.LogLevel, cfg.LogFormat))

	store, err := media.NewStore(cfg.MediaDir, cfg.StoriesDir)
	if err != nil {
		log.Error("failed to prepare media directories", slog.String("error", err.Error()))
		return nil, nil, nil, err
	}

	return cfg, log, store, nil
}
