package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var log *logger.Logger

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Verbose() {
		log = logger.New(logger.Config{Level: slog.LevelDebug})
	} else {
		log = logger.New(logger.Config{Level: slog.LevelError})
	}

	os.Exit(m.Run())
}

type fakeProvider struct {
	name     string
	artifact string
	err      error
	// partial writes a file through the workspace before failing.
	partial bool
	panics  bool
	calls   atomic.Int32
	onCall  func(ctx context.Context)
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Attempt(ctx context.Context, req Request, ws *Workspace) (string, error) {
	f.calls.Add(1)
	if f.onCall != nil {
		f.onCall(ctx)
	}
	if f.panics {
		panic("provider exploded")
	}
	if f.partial {
		file, err := ws.Create(".mp3")
		if err != nil {
			return "", err
		}
		file.Write([]byte("half an mp3"))
		file.Close()
		return "", errors.New("connection reset mid-stream")
	}
	if f.err != nil {
		return "", f.err
	}
	if f.artifact == "" {
		path, err := ws.WriteFile(".txt", []byte(f.name))
		if err != nil {
			return "", err
		}
		return path, nil
	}
	return f.artifact, nil
}

func ok(name string) *fakeProvider { return &fakeProvider{name: name, artifact: name + "-artifact"} }

func failing(name string) *fakeProvider {
	return &fakeProvider{name: name, err: errors.New(name + " unavailable")}
}

func newTestPipeline(t *testing.T, providers []Provider[string], fallback Provider[string], opts ...Option) *Pipeline[string] {
	t.Helper()
	opts = append([]Option{WithLogger(log), WithWorkspaceDir(t.TempDir())}, opts...)
	p, err := New(ModalityText, providers, fallback, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func textRequest(params map[string]string) Request {
	if params == nil {
		params = map[string]string{"topic": "the wise elephant"}
	}
	return NewRequest(ModalityText, params)
}

func TestGenerateFirstProviderWins(t *testing.T) {
	first, second := ok("openai"), ok("gemini")
	fallback := ok("template")
	p := newTestPipeline(t, []Provider[string]{first, second}, fallback)

	result, err := p.Generate(context.Background(), textRequest(nil))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.SourceProvider != "openai" {
		t.Errorf("Expected source provider openai, got %s", result.SourceProvider)
	}
	if result.IsFallback {
		t.Error("Expected IsFallback=false")
	}
	if result.Artifact != "openai-artifact" {
		t.Errorf("Unexpected artifact %q", result.Artifact)
	}
	if second.calls.Load() != 0 || fallback.calls.Load() != 0 {
		t.Error("Expected later tiers not to be attempted")
	}
	if len(result.Attempts) != 1 || result.Attempts[0].Status != StatusSuccess {
		t.Errorf("Unexpected attempts %+v", result.Attempts)
	}
}

func TestGenerateSkipsFailedTiers(t *testing.T) {
	p := newTestPipeline(t, []Provider[string]{failing("openai"), failing("gemini"), ok("huggingface")}, ok("template"))

	result, err := p.Generate(context.Background(), textRequest(nil))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.SourceProvider != "huggingface" || result.IsFallback {
		t.Errorf("Expected huggingface non-fallback result, got %s (fallback=%v)", result.SourceProvider, result.IsFallback)
	}

	if len(result.Attempts) != 3 {
		t.Fatalf("Expected 3 attempts, got %d", len(result.Attempts))
	}
	for i, name := range []string{"openai", "gemini"} {
		a := result.Attempts[i]
		if a.Provider != name || a.Status != StatusFailure {
			t.Errorf("Attempt %d: expected failed %s, got %+v", i, name, a)
		}
		if !strings.Contains(a.Error, "unavailable") {
			t.Errorf("Attempt %d: expected error text, got %q", i, a.Error)
		}
	}
}

func TestGenerateAllTiersFailUsesFallback(t *testing.T) {
	fallback := ok("template")
	p := newTestPipeline(t, []Provider[string]{failing("openai"), failing("gemini")}, fallback)

	result, err := p.Generate(context.Background(), textRequest(nil))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !result.IsFallback {
		t.Error("Expected IsFallback=true")
	}
	if result.SourceProvider != "template" {
		t.Errorf("Expected template, got %s", result.SourceProvider)
	}
	if fallback.calls.Load() != 1 {
		t.Errorf("Expected one fallback call, got %d", fallback.calls.Load())
	}
	last := result.Attempts[len(result.Attempts)-1]
	if !last.Fallback || last.Status != StatusSuccess {
		t.Errorf("Expected final fallback attempt, got %+v", last)
	}
}

func TestGenerateNoProvidersConfigured(t *testing.T) {
	p := newTestPipeline(t, nil, ok("template"))

	result, err := p.Generate(context.Background(), textRequest(nil))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !result.IsFallback || result.SourceProvider != "template" {
		t.Errorf("Expected fallback result, got %+v", result)
	}
}

func TestGenerateValidationErrorTriesNothing(t *testing.T) {
	first := ok("openai")
	fallback := ok("template")
	p := newTestPipeline(t, []Provider[string]{first}, fallback, WithValidator(func(r Request) error {
		if r.Param("topic") == "" {
			return Invalid("topic", "is required")
		}
		return nil
	}))

	_, err := p.Generate(context.Background(), textRequest(map[string]string{"culture": "Indian"}))
	if !IsValidation(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if first.calls.Load() != 0 || fallback.calls.Load() != 0 {
		t.Error("Expected no attempts for an invalid request")
	}
}

func TestGenerateWrapsPlainValidatorErrors(t *testing.T) {
	p := newTestPipeline(t, nil, ok("template"), WithValidator(func(Request) error {
		return errors.New("language not supported")
	}))

	_, err := p.Generate(context.Background(), textRequest(nil))
	if !IsValidation(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestGenerateRejectsWrongModality(t *testing.T) {
	p := newTestPipeline(t, nil, ok("template"))

	_, err := p.Generate(context.Background(), NewRequest(ModalityAudio, map[string]string{"text": "hi"}))
	if !IsValidation(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	_, err = p.Generate(context.Background(), Request{})
	if !IsValidation(err) {
		t.Fatalf("Expected ValidationError for zero request, got %v", err)
	}
}

func TestGenerateRemovesPartialFiles(t *testing.T) {
	dir := t.TempDir()
	partial := &fakeProvider{name: "gtts", partial: true}
	p := newTestPipeline(t, []Provider[string]{partial}, &fakeProvider{name: "tone"}, WithWorkspaceDir(dir))

	before := listDir(t, dir)

	result, err := p.Generate(context.Background(), textRequest(nil))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	after := listDir(t, dir)
	if len(after) != len(before)+1 {
		t.Fatalf("Expected exactly one new file (the fallback artifact), got %v", after)
	}
	for _, name := range after {
		if strings.Contains(name, "gtts") {
			t.Errorf("Partial file %s left behind", name)
		}
	}
	if !strings.Contains(result.Artifact, "tone") {
		t.Errorf("Expected fallback artifact path, got %s", result.Artifact)
	}
}

func TestGenerateRecoversProviderPanic(t *testing.T) {
	p := newTestPipeline(t, []Provider[string]{&fakeProvider{name: "openai", panics: true}}, ok("template"))

	result, err := p.Generate(context.Background(), textRequest(nil))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !result.IsFallback {
		t.Error("Expected fallback after panic")
	}
	if !strings.Contains(result.Attempts[0].Error, "panic") {
		t.Errorf("Expected panic in attempt error, got %q", result.Attempts[0].Error)
	}
}

func TestGenerateFallbackFailure(t *testing.T) {
	p := newTestPipeline(t, []Provider[string]{failing("openai")}, failing("template"))

	_, err := p.Generate(context.Background(), textRequest(nil))
	if !IsFallbackExhaustion(err) {
		t.Fatalf("Expected FallbackExhaustionError, got %v", err)
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		t.Error("ProviderError must never surface from Generate")
	}

	// The pipeline stays usable for later requests.
	p2 := newTestPipeline(t, []Provider[string]{failing("openai")}, ok("template"))
	if _, err := p2.Generate(context.Background(), textRequest(nil)); err != nil {
		t.Errorf("Expected next request to succeed, got %v", err)
	}
}

func TestGenerateLogsAttemptProvider(t *testing.T) {
	var buf bytes.Buffer
	jsonLog := logger.New(logger.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	var seen []string
	first := failing("openai")
	first.onCall = func(ctx context.Context) {
		name, _ := ctx.Value(logger.ContextKeyProvider).(string)
		seen = append(seen, name)
	}
	fallback := failing("template")
	p := newTestPipeline(t, []Provider[string]{first}, fallback, WithLogger(jsonLog))

	if _, err := p.Generate(context.Background(), textRequest(nil)); !IsFallbackExhaustion(err) {
		t.Fatalf("Expected FallbackExhaustionError, got %v", err)
	}
	if len(seen) != 1 || seen[0] != "openai" {
		t.Errorf("Expected attempt context to carry the provider, got %v", seen)
	}

	records := map[string]map[string]any{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("log output is not JSON: %v (%s)", err, line)
		}
		records[record["msg"].(string)] = record
	}

	attempt := records["provider attempt failed"]
	if attempt == nil || attempt["provider"] != "openai" || attempt["modality"] != "text" {
		t.Errorf("Expected attempt record tagged with provider and modality, got %v", attempt)
	}
	failed := records["fallback failed"]
	if failed == nil || failed["provider"] != "template" || failed["level"] != "ERROR" {
		t.Errorf("Expected error record for the fallback, got %v", failed)
	}
	if failed != nil && failed["error"] != "template unavailable" {
		t.Errorf("Expected fallback error in record, got %v", failed["error"])
	}
}

func TestGenerateNamesFilesFromClock(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := newTestPipeline(t, []Provider[string]{failing("openai")}, &fakeProvider{name: "template"},
		WithClock(func() time.Time { return now }))

	req := textRequest(nil)
	result, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := fmt.Sprintf("the-wise-elephant_20240501-100000_%s_template_1.txt", req.ID()[:8])
	if got := filepath.Base(result.Artifact); got != want {
		t.Errorf("Expected file %s, got %s", want, got)
	}
}

func TestGenerateCancelledBeforeStart(t *testing.T) {
	first := ok("openai")
	fallback := ok("template")
	p := newTestPipeline(t, []Provider[string]{first}, fallback)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, textRequest(nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if first.calls.Load() != 0 || fallback.calls.Load() != 0 {
		t.Error("Expected no attempts after cancellation")
	}
}

func TestGenerateCancelledDuringAttempt(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := &fakeProvider{name: "openai", partial: true, onCall: func(context.Context) { cancel() }}
	second := ok("gemini")
	fallback := ok("template")
	p := newTestPipeline(t, []Provider[string]{first, second}, fallback, WithWorkspaceDir(dir))

	result, err := p.Generate(ctx, textRequest(nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if result.SourceProvider != "" || result.Attempts != nil {
		t.Errorf("Expected no result, got %+v", result)
	}
	if second.calls.Load() != 0 || fallback.calls.Load() != 0 {
		t.Error("Expected remaining tiers and fallback to be skipped")
	}
	if files := listDir(t, dir); len(files) != 0 {
		t.Errorf("Expected no files after cancellation, got %v", files)
	}
}

func TestGeneratePinnedProvider(t *testing.T) {
	openai, gemini := ok("openai"), ok("gemini")
	p := newTestPipeline(t, []Provider[string]{openai, gemini}, ok("template"))

	result, err := p.Generate(context.Background(), textRequest(map[string]string{"topic": "x", "provider": "Gemini"}))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.SourceProvider != "gemini" {
		t.Errorf("Expected gemini, got %s", result.SourceProvider)
	}
	if openai.calls.Load() != 0 {
		t.Error("Expected openai to be skipped when gemini is pinned")
	}

	result, err = p.Generate(context.Background(), textRequest(map[string]string{"topic": "x", "provider": "huggingface"}))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !result.IsFallback {
		t.Error("Expected fallback for an unconfigured pinned provider")
	}

	result, err = p.Generate(context.Background(), textRequest(map[string]string{"topic": "x", "provider": "auto"}))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.SourceProvider != "openai" {
		t.Errorf("Expected auto to keep tier order, got %s", result.SourceProvider)
	}
}

func TestGenerateIsStableForIdenticalRequests(t *testing.T) {
	p := newTestPipeline(t, []Provider[string]{ok("openai"), ok("gemini")}, ok("template"))

	params := map[string]string{"topic": "river", "culture": "African"}
	var sources []string
	for i := 0; i < 5; i++ {
		result, err := p.Generate(context.Background(), textRequest(params))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		sources = append(sources, result.SourceProvider)
	}
	for _, s := range sources {
		if s != sources[0] {
			t.Fatalf("Expected stable source provider, got %v", sources)
		}
	}
}

func TestGenerateConcurrentRequests(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(t, []Provider[string]{&fakeProvider{name: "writer"}}, ok("template"), WithWorkspaceDir(dir))

	const n = 20
	var wg sync.WaitGroup
	paths := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := p.Generate(context.Background(), textRequest(nil))
			paths[i], errs[i] = result.Artifact, err
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("request %d failed: %v", i, errs[i])
		}
		if seen[paths[i]] {
			t.Fatalf("Two requests wrote the same file %s", paths[i])
		}
		seen[paths[i]] = true
	}
	if files := listDir(t, dir); len(files) != n {
		t.Errorf("Expected %d files, got %d", n, len(files))
	}
}

func TestGenerateRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	p := newTestPipeline(t, []Provider[string]{failing("openai")}, ok("template"), WithMetrics(metrics))

	if _, err := p.Generate(context.Background(), textRequest(nil)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got := testutil.ToFloat64(metrics.attempts.WithLabelValues("text", "openai", "failure")); got != 1 {
		t.Errorf("Expected 1 failed openai attempt, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.attempts.WithLabelValues("text", "template", "success")); got != 1 {
		t.Errorf("Expected 1 template success, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.fallbacks.WithLabelValues("text")); got != 1 {
		t.Errorf("Expected 1 fallback, got %v", got)
	}
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	tests := map[string]func() error{
		"missing_fallback": func() error {
			_, err := New[string](ModalityText, nil, nil)
			return err
		},
		"unknown_modality": func() error {
			_, err := New[string]("video", nil, ok("template"))
			return err
		},
		"duplicate_provider": func() error {
			_, err := New[string](ModalityText, []Provider[string]{ok("openai"), ok("openai")}, ok("template"))
			return err
		},
		"nil_provider": func() error {
			_, err := New[string](ModalityText, []Provider[string]{nil}, ok("template"))
			return err
		},
	}

	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			if err := fn(); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestRequestIsImmutable(t *testing.T) {
	params := map[string]string{"topic": "elephant"}
	req := NewRequest(ModalityText, params)
	params["topic"] = "tiger"

	if req.Param("topic") != "elephant" {
		t.Errorf("Request observed caller mutation: %s", req.Param("topic"))
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"The Wise Elephant!":  "the-wise-elephant",
		"  ":                  "untitled",
		"a/b\\c..d":           "a-b-c-d",
		"Ünïcode   spaces--x": "ünïcode-spaces-x",
	}
	for in, want := range tests {
		if got := Slug(in, 40); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("ReadDir failed: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
