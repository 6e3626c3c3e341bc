package narration

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"

	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

// ToneProviderName is the name of the local audio fallback.
const ToneProviderName = "tone"

const (
	toneSampleRate = 16000
	toneBits       = 16
	toneChannels   = 1

	chimeSeconds   = 0.6
	silenceSeconds = 1.4
	chimeAmplitude = 0.25
)

// chimeNotes are the partials of the chime, a soft major triad.
var chimeNotes = []float64{523.25, 659.25, 783.99}

// Tone writes a short WAV chime followed by silence. It marks that narration was unavailable
// without leaving the caller empty-handed, and only fails when the file cannot be written.
type Tone struct{}

// Name implements pipeline.Provider.
func (Tone) Name() string { return ToneProviderName }

// Attempt implements pipeline.Provider.
func (Tone) Attempt(_ context.Context, req pipeline.Request, ws *pipeline.Workspace) (media.File, error) {
	p := ParamsFrom(req)

	path, err := ws.WriteFile(".wav", ToneWAV())
	if err != nil {
		return media.File{}, err
	}

	return newAudioFile(path, "audio/wav", p)
}

// ToneWAV renders the fallback clip as a PCM WAV file.
func ToneWAV() []byte {
	chime := int(chimeSeconds * toneSampleRate)
	total := chime + int(silenceSeconds*toneSampleRate)

	samples := make([]int16, total)
	for i := range chime {
		t := float64(i) / toneSampleRate
		// Short attack, exponential decay.
		env := math.Min(1, t/0.01) * math.Exp(-5*t)
		var v float64
		for _, f := range chimeNotes {
			v += math.Sin(2 * math.Pi * f * t)
		}
		v = v / float64(len(chimeNotes)) * env * chimeAmplitude
		samples[i] = int16(v * math.MaxInt16)
	}

	return encodeWAV(samples)
}

func encodeWAV(samples []int16) []byte {
	dataSize := len(samples) * toneBits / 8
	blockAlign := toneChannels * toneBits / 8

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(toneChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(toneSampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(toneSampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(toneBits))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
