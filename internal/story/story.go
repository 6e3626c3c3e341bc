// Package story generates cultural story text: prompts built from static cultural
// knowledge, LLM providers, a response parser and a deterministic local template.
package story

import (
	"strings"
	"unicode/utf8"

	"github.com/eternisai/taleweaver/internal/pipeline"
)

// Request parameter names understood by the text pipeline.
const (
	ParamTopic     = "topic"
	ParamCulture   = "culture"
	ParamStoryType = "story_type"
	ParamLanguage  = "language"

	DefaultStoryType = "folk tale"
	DefaultLanguage  = "en"

	maxTopicLength = 200
)

// Story is the text artifact.
type Story struct {
	Topic         string   `json:"topic"`
	Culture       string   `json:"culture"`
	StoryType     string   `json:"story_type"`
	Language      string   `json:"language"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Scenes        []string `json:"scenes"`
	Moral         string   `json:"moral"`
	CulturalNotes string   `json:"cultural_notes,omitempty"`
}

// Params are the normalized inputs of a story request.
type Params struct {
	Topic     string
	Culture   string
	StoryType string
	Language  string
}

// ParamsFrom reads story parameters from a request, applying defaults.
func ParamsFrom(req pipeline.Request) Params {
	return Params{
		Topic:     req.Param(ParamTopic),
		Culture:   req.Param(ParamCulture),
		StoryType: req.ParamOr(ParamStoryType, DefaultStoryType),
		Language:  strings.ToLower(req.ParamOr(ParamLanguage, DefaultLanguage)),
	}
}

// NewRequest builds a text generation request. provider may be empty or "auto".
func NewRequest(p Params, provider string) pipeline.Request {
	params := map[string]string{
		ParamTopic:     p.Topic,
		ParamCulture:   p.Culture,
		ParamStoryType: p.StoryType,
		ParamLanguage:  p.Language,
	}
	if provider != "" {
		params[pipeline.ParamProvider] = provider
	}
	return pipeline.NewRequest(pipeline.ModalityText, params)
}

// Validate checks a text request before any provider sees it.
func Validate(req pipeline.Request) error {
	p := ParamsFrom(req)

	if p.Topic == "" {
		return pipeline.Invalid(ParamTopic, "is required")
	}
	if utf8.RuneCountInString(p.Topic) > maxTopicLength {
		return pipeline.Invalid(ParamTopic, "must be at most %d characters", maxTopicLength)
	}
	if p.Culture == "" {
		return pipeline.Invalid(ParamCulture, "is required")
	}
	if _, ok := Languages[p.Language]; !ok {
		return pipeline.Invalid(ParamLanguage, "unsupported language %q", p.Language)
	}

	return nil
}

func (s Story) withParams(p Params) Story {
	s.Topic = p.Topic
	s.Culture = p.Culture
	s.StoryType = p.StoryType
	s.Language = p.Language
	return s
}
