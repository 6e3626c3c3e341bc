// Package studio composes the text, audio and image pipelines into complete illustrated and
// narrated stories, and serves them over HTTP.
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eternisai/taleweaver/internal/config"
	"github.com/eternisai/taleweaver/internal/illustration"
	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/narration"
	"github.com/eternisai/taleweaver/internal/pipeline"
	"github.com/eternisai/taleweaver/internal/story"
)

type Service struct {
	text   *pipeline.Pipeline[story.Story]
	audio  *pipeline.Pipeline[media.File]
	images *pipeline.Pipeline[media.File]

	store       *media.Store
	concurrency int
	logger      *logger.Logger
	now         func() time.Time
}

// NewService builds the three pipelines from cfg. metrics may be nil.
func NewService(cfg *config.Config, store *media.Store, log *logger.Logger, metrics *pipeline.Metrics) (*Service, error) {
	opts := []pipeline.Option{pipeline.WithMetrics(metrics)}

	text, err := story.NewPipeline(cfg, log.WithComponent("story"), opts...)
	if err != nil {
		return nil, fmt.Errorf("text pipeline: %w", err)
	}
	audio, err := narration.NewPipeline(cfg, store, log.WithComponent("narration"), opts...)
	if err != nil {
		return nil, fmt.Errorf("audio pipeline: %w", err)
	}
	images, err := illustration.NewPipeline(cfg, store, log.WithComponent("illustration"), opts...)
	if err != nil {
		return nil, fmt.Errorf("image pipeline: %w", err)
	}

	return &Service{
		text:        text,
		audio:       audio,
		images:      images,
		store:       store,
		concurrency: max(cfg.SceneImageConcurrency, 1),
		logger:      log.WithComponent("studio"),
		now:         time.Now,
	}, nil
}

// Providers returns the effective tier order per modality, fallback last.
func (s *Service) Providers() map[string][]string {
	return map[string][]string{
		string(pipeline.ModalityText):  append(s.text.Providers(), s.text.Fallback()),
		string(pipeline.ModalityAudio): append(s.audio.Providers(), s.audio.Fallback()),
		string(pipeline.ModalityImage): append(s.images.Providers(), s.images.Fallback()),
	}
}

// GenerateText runs the text pipeline alone.
func (s *Service) GenerateText(ctx context.Context, req TextRequest) (StoryResult, error) {
	return s.text.Generate(ctx, story.NewRequest(story.Params{
		Topic:     req.Topic,
		Culture:   req.Culture,
		StoryType: req.StoryType,
		Language:  req.Language,
	}, req.Provider))
}

// CreateStory produces a full bundle: the topic image first, then the story, then narration
// and scene images concurrently. Only a failed story or a cancelled context fails the call;
// media that cannot be produced at all is reported in Warnings.
func (s *Service) CreateStory(ctx context.Context, req StoryRequest) (*Bundle, error) {
	ctx = logger.WithOperation(ctx, "create_story")
	log := s.logger.WithContext(ctx)

	textReq := story.NewRequest(story.Params{
		Topic:     req.Topic,
		Culture:   req.Culture,
		StoryType: req.StoryType,
		Language:  req.Language,
	}, req.TextProvider)
	// Reject bad input before spending an image generation on it.
	if err := story.Validate(textReq); err != nil {
		return nil, err
	}

	p := story.ParamsFrom(textReq)
	artStyle := req.ArtStyle
	if artStyle == "" {
		artStyle = illustration.DefaultArtStyle
	}

	// Scene images share the topic image's art style, so one check covers them.
	topicReq := illustration.NewRequest(illustration.Params{
		Prompt:   illustration.TopicPrompt(p.Topic, p.Culture, artStyle),
		ArtStyle: artStyle,
		Topic:    p.Topic,
		Culture:  p.Culture,
	}, req.ImageProvider)
	if err := illustration.Validate(topicReq); err != nil {
		return nil, err
	}

	voice := narration.Params{Language: p.Language, Voice: req.Voice, Speed: req.Speed}
	if enabled(req.GenerateAudio) {
		if err := narration.ValidateOptions(voice); err != nil {
			return nil, err
		}
	}

	bundle := &Bundle{}

	topicImage, err := s.images.Generate(ctx, topicReq)
	if err := s.keep(ctx, err, "topic image", &bundle.Warnings, log); err != nil {
		return nil, err
	}
	if err == nil {
		bundle.TopicImage = s.publish(topicImage)
	}

	text, err := s.text.Generate(ctx, textReq)
	if err != nil {
		return nil, err
	}
	bundle.Story = text

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	if enabled(req.GenerateAudio) {
		g.Go(func() error {
			voice.Text = text.Artifact.Content
			res, err := s.audio.Generate(gctx, narration.NewRequest(voice, req.AudioProvider))
			if err := s.keep(gctx, err, "narration", &bundle.Warnings, log); err != nil {
				return err
			}
			if err == nil {
				bundle.Narration = s.publish(res)
			}
			return nil
		})
	}

	var scenes []*MediaResult
	if enabled(req.GenerateImages) {
		scenes = s.drawScenes(gctx, g, text.Artifact.Scenes, p.Topic, p.Culture, artStyle, req.ImageProvider)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, res := range scenes {
		if res == nil {
			bundle.Warnings = append(bundle.Warnings, fmt.Sprintf("scene %d image unavailable", i+1))
			continue
		}
		bundle.SceneImages = append(bundle.SceneImages, *res)
	}

	if req.Collage && len(bundle.SceneImages) > 0 {
		bundle.Collage = s.collage(bundle.SceneImages, log)
	}

	bundle.Status = bundleStatus(bundle)
	log.Info("story bundle created",
		slog.String("title", text.Artifact.Title),
		slog.String("text_provider", text.SourceProvider),
		slog.Int("scene_images", len(bundle.SceneImages)),
		slog.Bool("narrated", bundle.Narration != nil),
	)

	return bundle, nil
}

// Narrate regenerates narration from edited text.
func (s *Service) Narrate(ctx context.Context, req NarrateRequest) (*NarrationResult, error) {
	res, err := s.audio.Generate(logger.WithOperation(ctx, "narrate"), narration.NewRequest(narration.Params{
		Text:     req.Text,
		Language: req.Language,
		Voice:    req.Voice,
		Speed:    req.Speed,
	}, req.Provider))
	if err != nil {
		return nil, err
	}

	params := res.Artifact.Params
	status := fmt.Sprintf("Audio generated with %s at %s", narration.VoiceLabel(params[narration.ParamVoice]), narration.SpeedLabel(params[narration.ParamSpeed]))
	if res.IsFallback {
		status = "Narration services are unavailable; a placeholder chime was generated instead"
	}

	return &NarrationResult{Narration: *s.publish(res), Status: status}, nil
}

// Illustrate extracts scenes from edited story text and draws one image per scene.
func (s *Service) Illustrate(ctx context.Context, req IllustrateRequest) (*IllustrationResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, pipeline.Invalid("content", "is required")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, pipeline.Invalid("topic", "is required")
	}

	ctx = logger.WithOperation(ctx, "illustrate")
	log := s.logger.WithContext(ctx)

	artStyle := req.ArtStyle
	if artStyle == "" {
		artStyle = illustration.DefaultArtStyle
	}

	scenes := story.ExtractScenes(req.Content, req.Topic)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	results := s.drawScenes(gctx, g, scenes, req.Topic, req.Culture, artStyle, req.Provider)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &IllustrationResult{Scenes: scenes}
	for i, res := range results {
		if res == nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("scene %d image unavailable", i+1))
			continue
		}
		out.SceneImages = append(out.SceneImages, *res)
	}
	if req.Collage && len(out.SceneImages) > 0 {
		out.Collage = s.collage(out.SceneImages, log)
	}
	out.Status = fmt.Sprintf("Generated %d images from your story", len(out.SceneImages))

	return out, nil
}

var (
	unsafeTitleChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]`)
	titleSeparators  = regexp.MustCompile(`[-\s]+`)
)

const savedRule = "=================================================="

// SaveStory writes the story as a text file in the stories directory.
func (s *Service) SaveStory(ctx context.Context, req SaveRequest) (*SavedStory, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, pipeline.Invalid("content", "is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled Story"
	}

	now := s.now()
	name := fmt.Sprintf("%s_%s.txt", safeTitle(title), now.Format("20060102_150405"))
	path := filepath.Join(s.store.StoriesDir(), name)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n%s\n\n", title, savedRule)
	sb.WriteString(req.Content)
	fmt.Fprintf(&sb, "\n\n%s\nSaved on: %s\n", savedRule, now.Format("2006-01-02 15:04:05"))

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return nil, fmt.Errorf("save story: %w", err)
	}

	s.logger.WithContext(ctx).Info("story saved", slog.String("file", name))
	return &SavedStory{Name: name, Path: path, Status: "Story saved as " + name}, nil
}

// safeTitle reduces a title to letters, digits, underscores and single dashes.
func safeTitle(title string) string {
	t := unsafeTitleChars.ReplaceAllString(title, "")
	t = strings.Trim(titleSeparators.ReplaceAllString(strings.TrimSpace(t), "-"), "-")
	if t == "" {
		return "story"
	}
	return t
}

// Suggestions returns topic ideas for a culture.
func (s *Service) Suggestions(culture string) []string {
	return story.Suggestions(culture)
}

// Catalog returns the selectable options and the effective provider order.
func (s *Service) Catalog() Catalog {
	return Catalog{
		Cultures:       story.Cultures,
		StoryTypes:     story.StoryTypes,
		TextLanguages:  maps.Clone(story.Languages),
		AudioLanguages: maps.Clone(narration.Languages),
		ArtStyles:      illustration.ArtStyles,
		Voices:         narration.Voices,
		Speeds:         narration.Speeds,
		Providers:      s.Providers(),
	}
}

// drawScenes schedules one image request per scene on g. The returned slice is filled in as
// the group runs; a nil entry means the scene produced no image.
func (s *Service) drawScenes(ctx context.Context, g *errgroup.Group, scenes []string, topic, culture, artStyle, provider string) []*MediaResult {
	results := make([]*MediaResult, len(scenes))
	log := s.logger.WithContext(ctx)

	for i, scene := range scenes {
		g.Go(func() error {
			res, err := s.images.Generate(ctx, illustration.NewRequest(illustration.Params{
				Prompt:   illustration.ScenePrompt(scene, culture, topic, artStyle),
				ArtStyle: artStyle,
				Topic:    topic,
				Culture:  culture,
			}, provider))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if pipeline.IsValidation(err) {
					return err
				}
				log.Error("scene image failed", slog.Int("scene", i+1), slog.String("error", err.Error()))
				return nil
			}
			results[i] = s.publish(res)
			return nil
		})
	}

	return results
}

// keep decides whether a media error ends the request. Cancellation and invalid input do;
// anything else is logged and recorded as a warning.
func (s *Service) keep(ctx context.Context, err error, what string, warnings *[]string, log *logger.Logger) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if pipeline.IsValidation(err) {
		return err
	}
	log.Error("artifact unavailable", slog.String("artifact", what), slog.String("error", err.Error()))
	*warnings = append(*warnings, what+" unavailable")
	return nil
}

func (s *Service) publish(res MediaResult) *MediaResult {
	res.Artifact = s.store.Publish(res.Artifact)
	return &res
}

func (s *Service) collage(images []MediaResult, log *logger.Logger) *media.File {
	files := make([]media.File, 0, len(images))
	for _, img := range images {
		files = append(files, img.Artifact)
	}

	data, err := illustration.Collage(files)
	if err != nil {
		log.Warn("collage skipped", slog.String("error", err.Error()))
		return nil
	}

	f, err := s.store.WriteImage("collage", data, s.now())
	if err != nil {
		log.Error("failed to write collage", slog.String("error", err.Error()))
		return nil
	}
	return &f
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

func bundleStatus(b *Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Story generated successfully! Created %d scenes", len(b.Story.Artifact.Scenes))
	if b.Narration != nil {
		sb.WriteString(" with audio narration")
	}
	images := len(b.SceneImages)
	if b.TopicImage != nil {
		images++
	}
	if images > 0 {
		fmt.Fprintf(&sb, " and %d images", images)
	}
	if b.Story.IsFallback {
		sb.WriteString(". AI providers were unavailable, so the story was written from local templates")
	}
	return sb.String()
}
