package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/eternisai/taleweaver/internal/config"
	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
	"github.com/eternisai/taleweaver/internal/studio"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. Generated media is served under /media, Prometheus metrics under
/metrics and the story endpoints under /api/v1.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, store, err := setup()
		if err != nil {
			return err
		}
		return serve(cfg, log, store)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cfg *config.Config, log *logger.Logger, store *media.Store) error {
	log.Info("setting gin mode", slog.String("mode", cfg.GinMode))
	gin.SetMode(cfg.GinMode)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service, err := studio.NewService(cfg, store, log, pipeline.NewMetrics(registry))
	if err != nil {
		log.Error("failed to initialize story service", slog.String("error", err.Error()))
		return err
	}
	handler := studio.NewHandler(service, log)

	sweeper, err := media.NewSweeper(store, cfg.MediaRetention, cfg.MediaSweepSchedule, log)
	if err != nil {
		log.Error("invalid media sweep schedule", slog.String("schedule", cfg.MediaSweepSchedule), slog.String("error", err.Error()))
		return err
	}
	sweeper.Start()

	router := gin.Default()
	router.Use(studio.RequestID())

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.Static(store.URLPrefix(), store.Root())

	handler.RegisterRoutes(router.Group("/api/v1"))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", studio.RequestIDHeader},
		ExposedHeaders: []string{studio.RequestIDHeader},
	}).Handler(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logStartup(cfg, service, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server failed", slog.String("error", err.Error()))
		sweeper.Stop(context.Background())
		return err
	case <-quit:
	}
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ServerShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	sweeper.Stop(ctx)

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
		return err
	}

	log.Info("server exited")
	return nil
}

func logStartup(cfg *config.Config, service *studio.Service, log *logger.Logger) {
	log.Info("taleweaver listening",
		slog.String("port", cfg.Port),
		slog.String("media_dir", cfg.MediaDir),
		slog.String("stories_dir", cfg.StoriesDir),
		slog.Any("cors_origins", cfg.CORSAllowedOrigins),
	)

	configFile := cfg.ConfigFile
	if configFile == "" {
		configFile = "built-in defaults"
	}
	log.Info("generation tiers",
		slog.String("source", configFile),
		slog.Any("providers", service.Providers()),
		slog.Int("scene_image_concurrency", cfg.SceneImageConcurrency),
	)

	log.Info("credentials",
		slog.Bool("openai", cfg.OpenAIAPIKey != ""),
		slog.Bool("gemini", cfg.GeminiAPIKey != ""),
		slog.Bool("huggingface", cfg.HuggingFaceAPIKey != ""),
	)
}
