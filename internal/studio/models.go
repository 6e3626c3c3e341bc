package studio

import (
	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/narration"
	"github.com/eternisai/taleweaver/internal/pipeline"
	"github.com/eternisai/taleweaver/internal/story"
)

// StoryRequest asks for a complete story bundle.
type StoryRequest struct {
	Topic     string `json:"topic"`
	Culture   string `json:"culture"`
	StoryType string `json:"story_type"`
	Language  string `json:"language"`

	// TextProvider and ImageProvider pin a tier; empty or "auto" keeps the configured order.
	TextProvider  string `json:"text_provider"`
	ImageProvider string `json:"image_provider"`
	AudioProvider string `json:"audio_provider"`

	ArtStyle string `json:"art_style"`
	Voice    string `json:"voice"`
	Speed    string `json:"speed"`

	// Nil means true.
	GenerateAudio  *bool `json:"generate_audio"`
	GenerateImages *bool `json:"generate_images"`
	Collage        bool  `json:"collage"`
}

// TextRequest asks for story text only.
type TextRequest struct {
	Topic     string `json:"topic"`
	Culture   string `json:"culture"`
	StoryType string `json:"story_type"`
	Language  string `json:"language"`
	Provider  string `json:"provider"`
}

// NarrateRequest asks for narration of (possibly edited) story text.
type NarrateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
	Speed    string `json:"speed"`
	Provider string `json:"provider"`
}

// IllustrateRequest asks for scene images drawn from (possibly edited) story text.
type IllustrateRequest struct {
	Content  string `json:"content"`
	Topic    string `json:"topic"`
	Culture  string `json:"culture"`
	ArtStyle string `json:"art_style"`
	Provider string `json:"provider"`
	Collage  bool   `json:"collage"`
}

// SaveRequest asks to persist a story as a text file.
type SaveRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type (
	StoryResult = pipeline.Result[story.Story]
	MediaResult = pipeline.Result[media.File]
)

// Bundle is a generated story with every artifact and where it came from.
type Bundle struct {
	Story       StoryResult   `json:"story"`
	TopicImage  *MediaResult  `json:"topic_image,omitempty"`
	Narration   *MediaResult  `json:"narration,omitempty"`
	SceneImages []MediaResult `json:"scene_images,omitempty"`
	Collage     *media.File   `json:"collage,omitempty"`
	// Warnings lists artifacts that could not be produced at all.
	Warnings []string `json:"warnings,omitempty"`
	Status   string   `json:"status"`
}

// NarrationResult is the response of Narrate.
type NarrationResult struct {
	Narration MediaResult `json:"narration"`
	Status    string      `json:"status"`
}

// IllustrationResult is the response of Illustrate.
type IllustrationResult struct {
	Scenes      []string      `json:"scenes"`
	SceneImages []MediaResult `json:"scene_images"`
	Collage     *media.File   `json:"collage,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Status      string        `json:"status"`
}

// SavedStory describes a story written to disk.
type SavedStory struct {
	Name   string `json:"name"`
	Path   string `json:"-"`
	Status string `json:"status"`
}

// Catalog lists every selectable option.
type Catalog struct {
	Cultures       []string            `json:"cultures"`
	StoryTypes     []string            `json:"story_types"`
	TextLanguages  map[string]string   `json:"text_languages"`
	AudioLanguages map[string]string   `json:"audio_languages"`
	ArtStyles      []string            `json:"art_styles"`
	Voices         []narration.Option  `json:"voices"`
	Speeds         []narration.Option  `json:"speeds"`
	Providers      map[string][]string `json:"providers"`
}
