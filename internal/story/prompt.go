package story

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// picker returns an index in [0, n).
type picker func(n int) int

func pick(p picker, items []string) string {
	return items[p(len(items))]
}

// SystemPrompt is the system message sent to chat models.
func SystemPrompt(culture string) string {
	return fmt.Sprintf("You are a master storyteller specializing in %s cultural stories. "+
		"Create engaging, authentic, and completely unique stories that preserve cultural heritage "+
		"while being accessible to modern audiences. Each story should be original and specifically "+
		"tailored to the user's topic. Never repeat the same story twice. Write in the requested language.", culture)
}

// BuildPrompt renders the user prompt. Cultural elements are drawn at random so repeated
// requests produce different stories.
func BuildPrompt(p Params) string {
	return buildPrompt(p, rand.IntN)
}

func buildPrompt(p Params, r picker) string {
	instruction, ok := languageInstructions[p.Language]
	if !ok {
		instruction = languageInstructions[DefaultLanguage]
	}

	el := lookup(promptElements, p.Culture)
	place := pick(r, el.places)
	character := pick(r, el.characters)
	tradition := pick(r, el.traditions)
	value := pick(r, el.values)
	symbol := pick(r, el.symbols)
	tone := pick(r, tones)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", instruction)
	fmt.Fprintf(&b, "Create a CULTURALLY AUTHENTIC and HISTORICALLY ACCURATE %s from %s culture about %q.\n\n", p.StoryType, p.Culture, p.Topic)

	b.WriteString("MANDATORY AUTHENTIC ELEMENTS:\n")
	fmt.Fprintf(&b, "1. Setting: %s (use real geographical and cultural details)\n", place)
	fmt.Fprintf(&b, "2. Character: %s (with authentic cultural role)\n", character)
	fmt.Fprintf(&b, "3. Cultural Practice: Include %s in the story\n", tradition)
	fmt.Fprintf(&b, "4. Core Value: Story must teach %s\n", value)
	fmt.Fprintf(&b, "5. Cultural Symbol: Incorporate %s meaningfully\n", symbol)
	fmt.Fprintf(&b, "6. Topic Context: %s\n\n", TopicContext(p.Topic, p.Culture))

	b.WriteString("AUTHENTICITY REQUIREMENTS:\n")
	b.WriteString("- Use REAL cultural practices, not generic ones\n")
	fmt.Fprintf(&b, "- Include authentic %s values and beliefs\n", p.Culture)
	b.WriteString("- Reference actual geographical locations\n")
	b.WriteString("- Incorporate traditional wisdom and teachings\n")
	b.WriteString("- Ensure cultural accuracy and respect\n")
	fmt.Fprintf(&b, "- Make the story educational about %s culture\n\n", p.Culture)

	b.WriteString("Story Requirements:\n")
	b.WriteString("- Length: 800-1200 words\n")
	fmt.Fprintf(&b, "- Tone: %s\n", tone)
	fmt.Fprintf(&b, "- The story MUST directly relate to %q throughout\n", p.Topic)
	b.WriteString("- Include vivid, culturally accurate descriptions\n")
	b.WriteString("- End with a meaningful moral lesson\n")
	fmt.Fprintf(&b, "- Write in %s\n\n", Languages[p.Language])

	b.WriteString("Structure EXACTLY as:\n")
	fmt.Fprintf(&b, "TITLE: [Authentic title incorporating %q and %s elements]\n\n", p.Topic, p.Culture)
	b.WriteString("STORY:\n")
	fmt.Fprintf(&b, "[Complete authentic story with real cultural elements, set in %s, featuring %s]\n\n", place, character)
	b.WriteString("SCENES:\n")
	for _, ordinal := range []string{"First", "Second", "Third", "Fourth", "Fifth"} {
		fmt.Fprintf(&b, "Scene: [%s authentic cultural scene]\n", ordinal)
	}
	fmt.Fprintf(&b, "\nMORAL: [Authentic %s wisdom about %q]\n\n", p.Culture, p.Topic)
	b.WriteString("CULTURAL NOTES: [Brief explanation of the real cultural elements used]\n\n")
	fmt.Fprintf(&b, "Remember: This must be an AUTHENTIC %s story that could actually be told in that culture, not a generic story with %s names!\n", p.Culture, p.Culture)

	return b.String()
}
