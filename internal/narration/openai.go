package narration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProviderName is the tier name of the OpenAI speech provider.
const OpenAIProviderName = "openai-tts"

// maxSpeechInput is the request limit of the speech endpoint.
const maxSpeechInput = 4096

var openAIVoices = map[string]openai.SpeechVoice{
	"us_male":   openai.VoiceOnyx,
	"us_female": openai.VoiceNova,
	"uk_male":   openai.VoiceFable,
	"uk_female": openai.VoiceShimmer,
	"au_voice":  openai.VoiceEcho,
}

var openAISpeeds = map[string]float64{
	SpeedSlow:   0.75,
	SpeedNormal: 1.0,
	SpeedFast:   1.25,
}

// OpenAI narrates with the OpenAI speech endpoint.
type OpenAI struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAI creates the provider. baseURL and model may be empty to use the defaults.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	m := openai.TTSModel1
	if model != "" {
		m = openai.SpeechModel(model)
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  m,
	}
}

// Name implements pipeline.Provider.
func (o *OpenAI) Name() string { return OpenAIProviderName }

// Attempt implements pipeline.Provider.
func (o *OpenAI) Attempt(ctx context.Context, req pipeline.Request, ws *pipeline.Workspace) (media.File, error) {
	p := ParamsFrom(req)

	input := []rune(p.Text)
	if len(input) > maxSpeechInput {
		input = input[:maxSpeechInput]
	}

	voice, ok := openAIVoices[p.Voice]
	if !ok {
		voice = openai.VoiceAlloy
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          string(input),
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          openAISpeeds[p.Speed],
	})
	if err != nil {
		return media.File{}, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Close()

	f, err := ws.Create(".mp3")
	if err != nil {
		return media.File{}, err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp); err != nil {
		return media.File{}, fmt.Errorf("write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return media.File{}, err
	}

	return newAudioFile(f.Name(), "audio/mpeg", p, "openai_voice", string(voice))
}
