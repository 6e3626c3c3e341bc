package story

import (
	"errors"
	"strings"
)

// ErrEmptyStory is returned when a model response has no story body.
var ErrEmptyStory = errors.New("response contains no story content")

const untitled = "Untitled Story"

// Parse reads a model response laid out as TITLE / STORY / SCENES / MORAL / CULTURAL NOTES
// sections. Cultural notes are also appended to the content as a closing paragraph.
func Parse(raw string, p Params) (Story, error) {
	s := Story{Title: untitled}.withParams(p)

	var section string
	var body []string

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		// Models often bold the headers.
		bare := strings.Trim(line, "*# ")

		switch {
		case strings.HasPrefix(bare, "TITLE:"):
			if title := strings.Trim(headerValue(bare, "TITLE:"), "\""); title != "" {
				s.Title = title
			}
		case strings.HasPrefix(bare, "STORY:"):
			section = "story"
			if rest := headerValue(bare, "STORY:"); rest != "" {
				body = append(body, rest)
			}
		case strings.HasPrefix(bare, "SCENES:"):
			section = "scenes"
		case strings.HasPrefix(bare, "MORAL:"):
			section = "moral"
			if rest := headerValue(bare, "MORAL:"); rest != "" {
				s.Moral = rest
			}
		case strings.HasPrefix(bare, "CULTURAL NOTES:"):
			section = "notes"
			if rest := headerValue(bare, "CULTURAL NOTES:"); rest != "" {
				s.CulturalNotes = rest
			}
		case strings.HasPrefix(bare, "Scene:"):
			if scene := headerValue(bare, "Scene:"); scene != "" {
				s.Scenes = append(s.Scenes, scene)
			}
		case bare == "":
		case section == "story":
			body = append(body, line)
		case section == "moral":
			s.Moral = line
		case section == "notes":
			s.CulturalNotes = line
		}
	}

	s.Content = strings.Join(body, "\n\n")
	if s.Content == "" {
		return Story{}, ErrEmptyStory
	}

	if s.CulturalNotes != "" {
		s.Content += "\n\nCultural Context: " + s.CulturalNotes
	}

	return s, nil
}

// headerValue returns the text following a section header on the same line.
func headerValue(line, header string) string {
	return strings.Trim(strings.TrimPrefix(line, header), " *")
}
