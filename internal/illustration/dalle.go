package illustration

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
	"github.com/sashabaranov/go-openai"
)

// DallEProviderName is the tier name of the DALL-E provider.
const DallEProviderName = "dalle"

// DallE draws images with the OpenAI images API.
type DallE struct {
	client *openai.Client
	model  string
}

// NewDallE creates the provider. baseURL and model may be empty to use the defaults.
func NewDallE(apiKey, baseURL, model string, timeout time.Duration) *DallE {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	if model == "" {
		model = openai.CreateImageModelDallE2
	}

	return &DallE{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name implements pipeline.Provider.
func (d *DallE) Name() string { return DallEProviderName }

// Attempt implements pipeline.Provider.
func (d *DallE) Attempt(ctx context.Context, req pipeline.Request, ws *pipeline.Workspace) (media.File, error) {
	params := ParamsFrom(req)

	resp, err := d.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         dallePrompt(params.Prompt, params.ArtStyle),
		Model:          d.model,
		N:              1,
		Size:           openai.CreateImageSize512x512,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return media.File{}, fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return media.File{}, errors.New("images API returned no image data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return media.File{}, fmt.Errorf("decode image: %w", err)
	}

	path, err := ws.WriteFile(".png", data)
	if err != nil {
		return media.File{}, err
	}

	return media.NewFile(path, "image/png", params.describe("model", d.model))
}
