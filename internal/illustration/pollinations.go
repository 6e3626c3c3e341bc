package illustration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

// PollinationsProviderName is the tier name of the Pollinations provider.
const PollinationsProviderName = "pollinations"

const defaultPollinationsURL = "https://image.pollinations.ai"

// maxImageBytes caps a downloaded image. A larger body fails the attempt.
var maxImageBytes int64 = 20 << 20

// Pollinations draws images with the free Pollinations API. No credential is needed.
type Pollinations struct {
	baseURL string
	client  *http.Client
}

// NewPollinations creates the provider. baseURL may be empty to use the public endpoint.
func NewPollinations(baseURL string, timeout time.Duration) *Pollinations {
	if baseURL == "" {
		baseURL = defaultPollinationsURL
	}
	return &Pollinations{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements pipeline.Provider.
func (p *Pollinations) Name() string { return PollinationsProviderName }

// Attempt implements pipeline.Provider.
func (p *Pollinations) Attempt(ctx context.Context, req pipeline.Request, ws *pipeline.Workspace) (media.File, error) {
	params := ParamsFrom(req)
	prompt := pollinationsPrompt(params.Prompt, params.ArtStyle)

	q := url.Values{}
	q.Set("width", fmt.Sprint(imageSize))
	q.Set("height", fmt.Sprint(imageSize))
	q.Set("nologo", "true")
	q.Set("enhance", "true")

	endpoint := p.baseURL + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return media.File{}, err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return media.File{}, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return media.File{}, fmt.Errorf("image API returned %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "image") {
		return media.File{}, fmt.Errorf("image API returned %q instead of an image", contentType)
	}

	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mimeType = "image/jpeg"
	}

	f, err := ws.Create(imageExt(mimeType))
	if err != nil {
		return media.File{}, err
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return media.File{}, fmt.Errorf("read image: %w", err)
	}
	if n > maxImageBytes {
		return media.File{}, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	if n == 0 {
		return media.File{}, errors.New("image API returned an empty body")
	}
	if err := f.Close(); err != nil {
		return media.File{}, err
	}

	return media.NewFile(f.Name(), mimeType, params.describe())
}

func imageExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".jpg"
}
