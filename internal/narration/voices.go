package narration

import "strings"

// Narration speeds.
const (
	SpeedSlow   = "slow"
	SpeedNormal = "normal"
	SpeedFast   = "fast"
)

// Option is a selectable value with a display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Languages the speech providers can narrate, keyed by code.
var Languages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"mr": "Marathi",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
	"ur": "Urdu",
}

// Voices in display order.
var Voices = []Option{
	{"default", "Default Voice (Standard)"},
	{"us_male", "American Male (Deep)"},
	{"us_female", "American Female (Clear)"},
	{"uk_male", "British Male (Formal)"},
	{"uk_female", "British Female (Elegant)"},
	{"au_voice", "Australian Voice (Friendly)"},
	{"ca_voice", "Canadian Voice (Warm)"},
	{"in_voice", "Indian English (Cultural)"},
}

// Speeds in display order.
var Speeds = []Option{
	{SpeedNormal, "Normal Speed (Recommended)"},
	{SpeedSlow, "Slow Speed (Clear & Easy)"},
	{SpeedFast, "Fast Speed (Quick Narration)"},
}

var speedLabels = map[string]string{
	SpeedNormal: Speeds[0].Label,
	SpeedSlow:   Speeds[1].Label,
	SpeedFast:   Speeds[2].Label,
}

// voiceTLDs maps English voices to the Google domain whose accent they use.
var voiceTLDs = map[string]string{
	"default":   "com",
	"us_male":   "com",
	"us_female": "com",
	"uk_male":   "co.uk",
	"uk_female": "co.uk",
	"au_voice":  "com.au",
	"ca_voice":  "ca",
	"in_voice":  "co.in",
}

// NormalizeVoice maps free-form voice input to a voice value. It accepts values ("uk_female"),
// spaced or dashed spellings ("UK Female") and display labels. Anything else is the default
// voice.
func NormalizeVoice(voice string) string {
	v := strings.ToLower(strings.TrimSpace(voice))
	if v == "" {
		return DefaultVoice
	}
	if _, ok := voiceTLDs[v]; ok {
		return v
	}
	slug := strings.Join(strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
	if _, ok := voiceTLDs[slug]; ok {
		return slug
	}
	for _, o := range Voices {
		if strings.EqualFold(o.Label, strings.TrimSpace(voice)) {
			return o.Value
		}
	}
	return DefaultVoice
}

// TLD returns the Google Translate domain suffix that gives the requested accent.
func TLD(language, voice string) string {
	switch language {
	case "en":
		if tld, ok := voiceTLDs[voice]; ok {
			return tld
		}
		return "com"
	case "hi":
		return "co.in"
	case "es":
		if voice == "us_male" || voice == "us_female" {
			return "com"
		}
		return "es"
	case "fr":
		if voice == "ca_voice" {
			return "ca"
		}
		return "fr"
	}
	return "com"
}

// VoiceLabel returns the display label of a voice, or the value itself when unknown.
func VoiceLabel(voice string) string {
	for _, v := range Voices {
		if v.Value == voice {
			return v.Label
		}
	}
	return voice
}

// SpeedLabel returns the display label of a speed, or the value itself when unknown.
func SpeedLabel(speed string) string {
	if label, ok := speedLabels[speed]; ok {
		return label
	}
	return speed
}
