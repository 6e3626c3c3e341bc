// Package illustration draws story images: Pollinations, DALL-E and a procedural placeholder
// renderer that works offline.
package illustration

import (
	"unicode/utf8"

	"github.com/eternisai/taleweaver/internal/pipeline"
)

// Request parameter names understood by the image pipeline.
const (
	ParamPrompt   = "prompt"
	ParamArtStyle = "art_style"
	ParamTopic    = "topic"
	ParamCulture  = "culture"

	DefaultArtStyle = "digital art"

	maxPromptLength   = 4000
	maxArtStyleLength = 100

	imageSize = 512
)

// ArtStyles offered to callers. Any other short style description is accepted as well.
var ArtStyles = []string{
	"digital art",
	"watercolor painting",
	"oil painting",
	"cartoon illustration",
	"traditional folk art",
	"children's book illustration",
	"realistic photography",
	"fantasy art",
	"vintage poster style",
	"minimalist design",
}

// Params are the normalized inputs of an image request.
type Params struct {
	Prompt   string
	ArtStyle string
	Topic    string
	Culture  string
}

// ParamsFrom reads image parameters from a request, applying defaults. A request that
// names only a topic gets the topic illustration prompt.
func ParamsFrom(req pipeline.Request) Params {
	p := Params{
		Prompt:   req.Param(ParamPrompt),
		ArtStyle: req.ParamOr(ParamArtStyle, DefaultArtStyle),
		Topic:    req.Param(ParamTopic),
		Culture:  req.Param(ParamCulture),
	}
	if p.Prompt == "" && p.Topic != "" {
		p.Prompt = TopicPrompt(p.Topic, p.Culture, p.ArtStyle)
	}
	return p
}

// NewRequest builds an image generation request. provider may be empty or "auto".
func NewRequest(p Params, provider string) pipeline.Request {
	params := map[string]string{
		ParamPrompt:   p.Prompt,
		ParamArtStyle: p.ArtStyle,
		ParamTopic:    p.Topic,
		ParamCulture:  p.Culture,
	}
	if provider != "" {
		params[pipeline.ParamProvider] = provider
	}
	return pipeline.NewRequest(pipeline.ModalityImage, params)
}

// Validate checks an image request before any provider sees it.
func Validate(req pipeline.Request) error {
	p := ParamsFrom(req)

	if p.Prompt == "" {
		return pipeline.Invalid(ParamPrompt, "is required when no topic is given")
	}
	if utf8.RuneCountInString(p.Prompt) > maxPromptLength {
		return pipeline.Invalid(ParamPrompt, "must be at most %d characters", maxPromptLength)
	}
	if utf8.RuneCountInString(p.ArtStyle) > maxArtStyleLength {
		return pipeline.Invalid(ParamArtStyle, "must be at most %d characters", maxArtStyleLength)
	}

	return nil
}

func (p Params) describe(extra ...string) map[string]string {
	out := map[string]string{ParamArtStyle: p.ArtStyle}
	if p.Topic != "" {
		out[ParamTopic] = p.Topic
	}
	if p.Culture != "" {
		out[ParamCulture] = p.Culture
	}
	for i := 0; i+1 < len(extra); i += 2 {
		out[extra[i]] = extra[i+1]
	}
	return out
}
