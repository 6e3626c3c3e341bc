package narration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

// GTTSProviderName is the tier name of the Google Translate speech provider.
const GTTSProviderName = "gtts"

const (
	gttsChunkLength = 100
	gttsUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// GTTS narrates through the public Google Translate text-to-speech endpoint. The accent is
// chosen by the Google domain the request is sent to.
type GTTS struct {
	baseURL string
	client  *http.Client
}

// NewGTTS creates the provider. An empty baseURL targets translate.google.<tld>, picked per
// request from the language and voice.
func NewGTTS(baseURL string, timeout time.Duration) *GTTS {
	return &GTTS{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements pipeline.Provider.
func (g *GTTS) Name() string { return GTTSProviderName }

// Attempt implements pipeline.Provider.
func (g *GTTS) Attempt(ctx context.Context, req pipeline.Request, ws *pipeline.Workspace) (media.File, error) {
	p := ParamsFrom(req)
	tld := TLD(p.Language, p.Voice)

	chunks := splitText(p.Text, gttsChunkLength)
	if len(chunks) == 0 {
		return media.File{}, errors.New("no speakable text")
	}

	f, err := ws.Create(".mp3")
	if err != nil {
		return media.File{}, err
	}
	defer f.Close()

	for i, chunk := range chunks {
		if err := g.fetch(ctx, f, tld, p, chunk, i, len(chunks)); err != nil {
			return media.File{}, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	if err := f.Close(); err != nil {
		return media.File{}, err
	}

	return newAudioFile(f.Name(), "audio/mpeg", p, "tld", tld)
}

func (g *GTTS) fetch(ctx context.Context, w io.Writer, tld string, p Params, chunk string, idx, total int) error {
	base := g.baseURL
	if base == "" {
		base = "https://translate.google." + tld
	}

	speed := "1"
	if p.Speed == SpeedSlow {
		speed = "0.24"
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", p.Language)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	q.Set("client", "tw-ob")
	q.Set("ttsspeed", speed)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("User-Agent", gttsUserAgent)
	httpReq.Header.Set("Referer", "http://translate.google.com/")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts endpoint returned %d", resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	if n == 0 {
		return errors.New("tts endpoint returned no audio")
	}
	return nil
}

// splitText breaks text into chunks of at most max runes, cutting on whitespace. Words
// longer than max are split mid-word.
func splitText(text string, max int) []string {
	var chunks []string
	var current []rune

	flush := func() {
		if s := strings.TrimSpace(string(current)); s != "" {
			chunks = append(chunks, s)
		}
		current = current[:0]
	}

	for _, word := range strings.FieldsFunc(text, unicode.IsSpace) {
		w := []rune(word)
		for len(w) > max {
			flush()
			chunks = append(chunks, string(w[:max]))
			w = w[max:]
		}

		if len(current) > 0 && len(current)+1+len(w) > max {
			flush()
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, w...)
	}
	flush()

	return chunks
}
