package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestFromConfig(t *testing.T) {
	tests := map[string]struct {
		level, format string
		env           string
		wantLevel     slog.Level
		wantFormat    string
	}{
		"defaults":   {wantLevel: slog.LevelDebug, wantFormat: "text"},
		"warn_json":  {level: "warn", format: "json", wantLevel: slog.LevelWarn, wantFormat: "json"},
		"production": {level: "info", format: "text", env: "production", wantLevel: slog.LevelInfo, wantFormat: "json"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", tc.env)
			cfg := FromConfig(tc.level, tc.format)
			if cfg.Level != tc.wantLevel {
				t.Errorf("Expected level %v, got %v", tc.wantLevel, cfg.Level)
			}
			if cfg.Format != tc.wantFormat {
				t.Errorf("Expected format %q, got %q", tc.wantFormat, cfg.Format)
			}
		})
	}
}

func TestWithContextAddsGenerationFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithModality(ctx, "image")
	ctx = WithProvider(ctx, "pollinations")

	log.WithComponent("pipeline").LogError(ctx, errors.New("boom"), "attempt failed")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}

	want := map[string]string{
		"request_id": "req-1",
		"modality":   "image",
		"provider":   "pollinations",
		"component":  "pipeline",
		"error":      "boom",
		"msg":        "attempt failed",
	}
	for key, value := range want {
		if record[key] != value {
			t.Errorf("Expected %s=%q, got %v", key, value, record[key])
		}
	}
}

func TestDiscardDropsRecords(t *testing.T) {
	log := Discard()
	if log.Enabled(context.Background(), slog.LevelError) {
		t.Error("Expected discard logger to drop error records")
	}
}
