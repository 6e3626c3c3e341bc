package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eternisai/taleweaver/internal/pipeline"
)

// HuggingFaceProviderName is the tier name of the Hugging Face inference provider.
const HuggingFaceProviderName = "huggingface"

const (
	defaultHuggingFaceURL   = "https://api-inference.huggingface.co"
	defaultHuggingFaceModel = "meta-llama/Llama-2-7b-chat-hf"
)

// HuggingFace writes stories with a Llama chat model on the Hugging Face inference API.
type HuggingFace struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewHuggingFace creates the provider. baseURL and model may be empty to use the defaults.
func NewHuggingFace(apiKey, baseURL, model string, timeout time.Duration) *HuggingFace {
	if baseURL == "" {
		baseURL = defaultHuggingFaceURL
	}
	if model == "" {
		model = defaultHuggingFaceModel
	}
	return &HuggingFace{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	DoSample     bool    `json:"do_sample"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// Name implements pipeline.Provider.
func (h *HuggingFace) Name() string { return HuggingFaceProviderName }

// Attempt implements pipeline.Provider.
func (h *HuggingFace) Attempt(ctx context.Context, req pipeline.Request, _ *pipeline.Workspace) (Story, error) {
	p := ParamsFrom(req)

	body, err := json.Marshal(hfRequest{
		Inputs: "<s>[INST] " + BuildPrompt(p) + " [/INST]",
		Parameters: hfParameters{
			MaxNewTokens: 1500,
			Temperature:  0.8,
			DoSample:     true,
		},
	})
	if err != nil {
		return Story{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/models/"+h.model, bytes.NewReader(body))
	if err != nil {
		return Story{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return Story{}, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Story{}, fmt.Errorf("inference API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var generations []hfGeneration
	if err := json.NewDecoder(resp.Body).Decode(&generations); err != nil {
		return Story{}, fmt.Errorf("decode inference response: %w", err)
	}
	if len(generations) == 0 {
		return Story{}, errors.New("inference API returned no generations")
	}

	text := generations[0].GeneratedText
	if _, after, found := strings.Cut(text, "[/INST]"); found {
		text = after
	}

	return Parse(text, p)
}
