package story

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eternisai/taleweaver/internal/pipeline"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProviderName is the tier name of the Gemini provider.
const GeminiProviderName = "gemini"

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini writes stories with Google's Gemini models.
type Gemini struct {
	apiKey string
	model  string
	opts   []option.ClientOption
}

// NewGemini creates the provider. Extra client options are appended after the API key.
func NewGemini(apiKey, model string, opts ...option.ClientOption) *Gemini {
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, model: model, opts: opts}
}

// Name implements pipeline.Provider.
func (g *Gemini) Name() string { return GeminiProviderName }

// Attempt implements pipeline.Provider.
func (g *Gemini) Attempt(ctx context.Context, req pipeline.Request, _ *pipeline.Workspace) (Story, error) {
	p := ParamsFrom(req)

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)...)
	if err != nil {
		return Story{}, fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0.8)
	model.SetTopP(0.9)
	model.SetMaxOutputTokens(2048)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt(p.Culture))}}

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(p)))
	if err != nil {
		return Story{}, fmt.Errorf("generate content: %w", err)
	}

	text, err := geminiText(resp)
	if err != nil {
		return Story{}, err
	}

	return Parse(text, p)
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned, possibly blocked by safety filters")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("first candidate has no content parts")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("first candidate has no text parts")
	}
	return b.String(), nil
}
