package pipeline

import (
	"maps"
	"strings"

	"github.com/google/uuid"
)

// Modality identifies which kind of artifact a pipeline produces.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
	ModalityImage Modality = "image"
)

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	switch m {
	case ModalityText, ModalityAudio, ModalityImage:
		return true
	}
	return false
}

// ParamProvider is the request parameter that pins generation to one configured provider.
// The value "auto" (or no value) keeps the full tier order.
const ParamProvider = "provider"

// Request is an immutable generation request. Build one with NewRequest.
type Request struct {
	id       string
	modality Modality
	params   map[string]string
}

// NewRequest creates a request with a fresh ID. The params map is copied, so later
// changes by the caller are not observed by providers.
func NewRequest(modality Modality, params map[string]string) Request {
	return Request{
		id:       uuid.New().String(),
		modality: modality,
		params:   maps.Clone(params),
	}
}

// ID returns the request identifier used in logs and artifact file names.
func (r Request) ID() string { return r.id }

// Modality returns the modality the request targets.
func (r Request) Modality() Modality { return r.modality }

// Param returns the trimmed value of a parameter, or "" when absent.
func (r Request) Param(key string) string {
	return strings.TrimSpace(r.params[key])
}

// ParamOr returns the parameter value, or def when the parameter is absent or blank.
func (r Request) ParamOr(key, def string) string {
	if v := r.Param(key); v != "" {
		return v
	}
	return def
}

// PreferredProvider returns the provider the caller pinned via ParamProvider, if any.
func (r Request) PreferredProvider() string {
	p := strings.ToLower(r.Param(ParamProvider))
	if p == "auto" {
		return ""
	}
	return p
}
