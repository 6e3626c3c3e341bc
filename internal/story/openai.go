package story

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/eternisai/taleweaver/internal/pipeline"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProviderName is the tier name of the OpenAI chat provider.
const OpenAIProviderName = "openai"

// OpenAI writes stories with the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the provider. baseURL and model may be empty to use the defaults.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name implements pipeline.Provider.
func (o *OpenAI) Name() string { return OpenAIProviderName }

// Attempt implements pipeline.Provider.
func (o *OpenAI) Attempt(ctx context.Context, req pipeline.Request, _ *pipeline.Workspace) (Story, error) {
	p := ParamsFrom(req)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(p.Culture)},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(p)},
		},
		MaxTokens: 1500,
		// Vary creativity between requests.
		Temperature:      float32(0.7 + rand.Float64()*0.2),
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.3,
	})
	if err != nil {
		return Story{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Story{}, errors.New("chat completion returned no choices")
	}

	return Parse(resp.Choices[0].Message.Content, p)
}
