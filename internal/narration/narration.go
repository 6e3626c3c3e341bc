// Package narration turns story text into speech: Google Translate TTS, OpenAI TTS and a
// local tone fallback that never touches the network.
package narration

import (
	"strings"

	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

// Request parameter names understood by the audio pipeline.
const (
	ParamText     = "text"
	ParamLanguage = "language"
	ParamVoice    = "voice"
	ParamSpeed    = "speed"

	DefaultLanguage = "en"
	DefaultVoice    = "default"
	DefaultSpeed    = SpeedNormal

	// maxTextLength bounds a single narration. A full story is a few thousand characters.
	maxTextLength = 20000
)

// Params are the normalized inputs of a narration request.
type Params struct {
	Text     string
	Language string
	Voice    string
	Speed    string
}

// ParamsFrom reads narration parameters from a request, applying defaults.
func ParamsFrom(req pipeline.Request) Params {
	return Params{
		Text:     req.Param(ParamText),
		Language: strings.ToLower(req.ParamOr(ParamLanguage, DefaultLanguage)),
		Voice:    NormalizeVoice(req.Param(ParamVoice)),
		Speed:    strings.ToLower(req.ParamOr(ParamSpeed, DefaultSpeed)),
	}
}

// NewRequest builds an audio generation request. provider may be empty or "auto".
func NewRequest(p Params, provider string) pipeline.Request {
	params := map[string]string{
		ParamText:     p.Text,
		ParamLanguage: p.Language,
		ParamVoice:    p.Voice,
		ParamSpeed:    p.Speed,
	}
	if provider != "" {
		params[pipeline.ParamProvider] = provider
	}
	return pipeline.NewRequest(pipeline.ModalityAudio, params)
}

// Validate checks an audio request before any provider sees it.
func Validate(req pipeline.Request) error {
	p := ParamsFrom(req)

	if p.Text == "" {
		return pipeline.Invalid(ParamText, "is required")
	}
	if len([]rune(p.Text)) > maxTextLength {
		return pipeline.Invalid(ParamText, "must be at most %d characters", maxTextLength)
	}
	return p.checkOptions()
}

// ValidateOptions checks the language and speed of a narration whose text is not written yet.
func ValidateOptions(p Params) error {
	return ParamsFrom(NewRequest(p, "")).checkOptions()
}

func (p Params) checkOptions() error {
	if _, ok := Languages[p.Language]; !ok {
		return pipeline.Invalid(ParamLanguage, "unsupported language %q", p.Language)
	}
	if _, ok := speedLabels[p.Speed]; !ok {
		return pipeline.Invalid(ParamSpeed, "must be one of slow, normal, fast")
	}

	return nil
}

// describe builds the artifact params recorded alongside the file.
func describe(p Params, extra ...string) map[string]string {
	out := map[string]string{
		ParamLanguage: p.Language,
		ParamVoice:    p.Voice,
		ParamSpeed:    p.Speed,
	}
	for i := 0; i+1 < len(extra); i += 2 {
		out[extra[i]] = extra[i+1]
	}
	return out
}

func newAudioFile(path, mimeType string, p Params, extra ...string) (media.File, error) {
	return media.NewFile(path, mimeType, describe(p, extra...))
}
