package illustration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eternisai/taleweaver/internal/config"
	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	return img
}

func TestThemeFor(t *testing.T) {
	tests := map[string]string{
		"An elephant at the temple gate":     "indian",
		"Children playing in a green FOREST": "nature",
		"The river at dawn":                  "water",
		"A flame in the dark":                "fire",
		"A quiet library":                    "elegant",
		// The first matching theme in order wins.
		"A temple by the river": "indian",
	}

	for description, want := range tests {
		if got := ThemeFor(description).Name; got != want {
			t.Errorf("ThemeFor(%q) = %s, want %s", description, got, want)
		}
	}
}

func TestRenderPlaceholder(t *testing.T) {
	data, err := RenderPlaceholder("A wise elephant beside the temple", "watercolor")
	if err != nil {
		t.Fatalf("RenderPlaceholder failed: %v", err)
	}

	img := decodePNG(t, data)
	if img.Bounds() != image.Rect(0, 0, 512, 512) {
		t.Fatalf("Unexpected bounds %v", img.Bounds())
	}

	accent := themes[0].Accent
	if got := color.RGBAModel.Convert(img.At(6, 6)).(color.RGBA); got != accent {
		t.Errorf("Expected accent border at (6,6), got %v", got)
	}

	again, err := RenderPlaceholder("A wise elephant beside the temple", "watercolor")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Error("Expected identical output for identical input")
	}
}

func TestRenderPlaceholderEveryTheme(t *testing.T) {
	for _, description := range []string{"elephant", "forest", "ocean", "sun", "castle", ""} {
		if _, err := RenderPlaceholder(description, DefaultArtStyle); err != nil {
			t.Errorf("RenderPlaceholder(%q) failed: %v", description, err)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog near the river bank", 20)
	for _, line := range lines {
		if len(line) > 20 {
			t.Errorf("Line too long: %q", line)
		}
	}
	if strings.Join(lines, " ") != "the quick brown fox jumps over the lazy dog near the river bank" {
		t.Errorf("Unexpected lines %q", lines)
	}

	if got := wrapText(strings.Repeat("a", 45), 20); len(got) != 3 || len(got[2]) != 5 {
		t.Errorf("Unexpected split of long word %q", got)
	}
}

func TestPrompts(t *testing.T) {
	topic := TopicPrompt("the wise elephant", "Indian", "watercolor painting")
	if !strings.HasPrefix(topic, "watercolor painting illustration of the wise elephant in traditional Indian setting") {
		t.Errorf("Unexpected topic prompt %q", topic)
	}
	if !strings.Contains(TopicPrompt("x", "Martian", "digital art"), "in beautiful cultural setting") {
		t.Error("Expected generic setting for unknown culture")
	}

	scene := ScenePrompt("A procession at dusk", "African", "lion and the river", "digital art")
	for _, want := range []string{
		"African cultural digital art illustration: A procession at dusk",
		"mighty lion",
		"flowing water",
		"earth tones, sunset orange",
		`"lion and the river"`,
	} {
		if !strings.Contains(scene, want) {
			t.Errorf("Expected scene prompt to contain %q", want)
		}
	}

	if got := TopicKeywords("a clockmaker"); got != "a clockmaker, detailed representation, culturally authentic" {
		t.Errorf("Unexpected generic keywords %q", got)
	}

	long := pollinationsPrompt(strings.Repeat("word ", 100), "digital art")
	if n := len([]rune(long)); n > 200 {
		t.Errorf("Expected Pollinations prompt of at most 200 characters, got %d", n)
	}
	if n := len([]rune(dallePrompt(strings.Repeat("x", 2000), "oil painting"))); n != 1000 {
		t.Errorf("Expected DALL-E prompt cut to 1000 characters, got %d", n)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(NewRequest(Params{Prompt: "a lotus"}, "")); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}
	if err := Validate(NewRequest(Params{}, "")); !pipeline.IsValidation(err) {
		t.Errorf("Expected validation error for missing prompt, got %v", err)
	}
	if err := Validate(NewRequest(Params{Prompt: "x", ArtStyle: strings.Repeat("s", 101)}, "")); !pipeline.IsValidation(err) {
		t.Errorf("Expected validation error for long style, got %v", err)
	}
	if got := ParamsFrom(NewRequest(Params{Prompt: "x"}, "")).ArtStyle; got != DefaultArtStyle {
		t.Errorf("Expected default art style, got %q", got)
	}

	topicOnly := NewRequest(Params{Topic: "wise elephant", Culture: "Indian", ArtStyle: "watercolor"}, "")
	if err := Validate(topicOnly); err != nil {
		t.Errorf("Expected topic-only request to be valid, got %v", err)
	}
	if got, want := ParamsFrom(topicOnly).Prompt, TopicPrompt("wise elephant", "Indian", "watercolor"); got != want {
		t.Errorf("Expected topic prompt %q, got %q", want, got)
	}
}

func TestPollinationsProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/prompt/oil painting illustration of a lotus") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("width") != "512" || q.Get("height") != "512" || q.Get("nologo") != "true" || q.Get("enhance") != "true" {
			t.Errorf("Unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("\xff\xd8\xff fake jpeg"))
	}))
	defer server.Close()

	req := NewRequest(Params{Prompt: "a lotus", ArtStyle: "oil painting", Topic: "lotus"}, "")
	ws := pipeline.NewWorkspace(t.TempDir(), req, PollinationsProviderName)

	file, err := NewPollinations(server.URL, 5*time.Second).Attempt(context.Background(), req, ws)
	if err != nil {
		t.Fatalf("Attempt failed: %v", err)
	}
	if filepath.Ext(file.Path) != ".jpg" || file.MIMEType != "image/jpeg" {
		t.Errorf("Unexpected file %+v", file)
	}
	if file.Params[ParamArtStyle] != "oil painting" || file.Params[ParamTopic] != "lotus" {
		t.Errorf("Unexpected params %v", file.Params)
	}
}

func TestPollinationsRejectsNonImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>rate limited</html>"))
	}))
	defer server.Close()

	req := NewRequest(Params{Prompt: "a lotus"}, "")
	ws := pipeline.NewWorkspace(t.TempDir(), req, PollinationsProviderName)

	if _, err := NewPollinations(server.URL, 5*time.Second).Attempt(context.Background(), req, ws); err == nil {
		t.Error("Expected error for non-image response")
	}
}

func TestPollinationsRejectsOversizedImage(t *testing.T) {
	limit := maxImageBytes
	maxImageBytes = 16
	t.Cleanup(func() { maxImageBytes = limit })

	body := []byte("\xff\xd8\xff fake jpeg body")

	tests := map[string]struct {
		size    int
		wantErr bool
	}{
		"at_limit":   {size: 16},
		"over_limit": {size: len(body), wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Write(body[:tc.size])
			}))
			defer server.Close()

			req := NewRequest(Params{Prompt: "a lotus"}, "")
			ws := pipeline.NewWorkspace(t.TempDir(), req, PollinationsProviderName)

			_, err := NewPollinations(server.URL, 5*time.Second).Attempt(context.Background(), req, ws)
			if tc.wantErr && err == nil {
				t.Error("Expected error for an image over the size limit")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected image at the limit to pass, got %v", err)
			}
		})
	}
}

func TestDallEProvider(t *testing.T) {
	pngData, err := RenderPlaceholder("sun", "")
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body struct {
			Model          string `json:"model"`
			Size           string `json:"size"`
			ResponseFormat string `json:"response_format"`
			Prompt         string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if body.Model != "dall-e-2" || body.Size != "512x512" || body.ResponseFormat != "b64_json" {
			t.Errorf("Unexpected request %+v", body)
		}
		if body.Prompt != "digital art illustration of a rising sun" {
			t.Errorf("Unexpected prompt %q", body.Prompt)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"created": 1700000000,
			"data":    []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(pngData)}},
		})
	}))
	defer server.Close()

	req := NewRequest(Params{Prompt: "a rising sun"}, "")
	ws := pipeline.NewWorkspace(t.TempDir(), req, DallEProviderName)

	file, err := NewDallE("sk-test", server.URL+"/v1", "", 5*time.Second).Attempt(context.Background(), req, ws)
	if err != nil {
		t.Fatalf("Attempt failed: %v", err)
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, pngData) {
		t.Error("Expected decoded image on disk")
	}
}

func imageConfig(providers ...config.ProviderConfig) *config.Config {
	return &config.Config{
		ProviderTimeout: 5 * time.Second,
		MediaDir:        "media",
		Generation: &config.GenerationConfig{
			Image: &config.TierConfig{Providers: providers},
		},
	}
}

func TestPipelineUsesPlaceholderTier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer server.Close()

	store, err := media.NewStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}

	cfg := imageConfig(
		config.ProviderConfig{Name: PollinationsProviderName, BaseURL: server.URL},
		config.ProviderConfig{Name: DallEProviderName, APIKeyEnvVar: "OPENAI_API_KEY"},
		config.ProviderConfig{Name: PlaceholderProviderName},
	)

	p, err := NewPipeline(cfg, store, logger.Discard())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	if got := p.Providers(); len(got) != 2 || got[1] != PlaceholderProviderName {
		t.Errorf("Expected pollinations and placeholder tiers, got %v", got)
	}

	req := NewRequest(Params{Topic: "wise elephant", Culture: "Indian", ArtStyle: "watercolor"}, "")
	result, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.IsFallback || result.SourceProvider != PlaceholderProviderName {
		t.Errorf("Expected placeholder tier success, got %s (fallback=%v)", result.SourceProvider, result.IsFallback)
	}
	want := map[string]string{ParamArtStyle: "watercolor", ParamTopic: "wise elephant", ParamCulture: "Indian", "theme": "indian"}
	for k, v := range want {
		if result.Artifact.Params[k] != v {
			t.Errorf("Expected %s=%q in params, got %v", k, v, result.Artifact.Params)
		}
	}

	data, err := os.ReadFile(result.Artifact.Path)
	if err != nil {
		t.Fatal(err)
	}
	decodePNG(t, data)
}

func TestPipelineFallsBackToPlaceholder(t *testing.T) {
	store, err := media.NewStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}

	p, err := NewPipeline(imageConfig(), store, logger.Discard())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	result, err := p.Generate(context.Background(), NewRequest(Params{Prompt: "a castle"}, "dalle"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !result.IsFallback || result.SourceProvider != PlaceholderProviderName {
		t.Errorf("Expected placeholder fallback, got %s (fallback=%v)", result.SourceProvider, result.IsFallback)
	}
	if filepath.Dir(result.Artifact.Path) != store.ImageDir() {
		t.Errorf("Expected file in image dir, got %s", result.Artifact.Path)
	}
}

func TestCollage(t *testing.T) {
	dir := t.TempDir()

	var files []media.File
	for i, description := range []string{"elephant", "river"} {
		data, err := RenderPlaceholder(description, "")
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, description+".png")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		f, err := media.NewFile(path, "image/png", nil)
		if err != nil {
			t.Fatalf("file %d: %v", i, err)
		}
		files = append(files, f)
	}
	files = append(files, media.File{Path: filepath.Join(dir, "missing.png")})

	data, err := Collage(files)
	if err != nil {
		t.Fatalf("Collage failed: %v", err)
	}
	if b := decodePNG(t, data).Bounds(); b.Dx() != 512 || b.Dy() != 256 {
		t.Errorf("Expected side by side layout, got %v", b)
	}

	if _, err := Collage([]media.File{{Path: filepath.Join(dir, "missing.png")}}); err == nil {
		t.Error("Expected error when no image can be decoded")
	}
}
