package story

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxScenes          = 5
	minSceneParagraph  = 50
	sceneExcerptLength = 100
)

// ExtractScenes turns edited story text into scene descriptions for illustration. The first
// five paragraphs longer than 50 characters each become a scene; text with no substantial
// paragraph gets five generic scenes about the topic.
func ExtractScenes(content, topic string) []string {
	var scenes []string

	var paragraphs []string
	for _, para := range strings.Split(content, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			paragraphs = append(paragraphs, para)
		}
	}
	if len(paragraphs) > maxScenes {
		paragraphs = paragraphs[:maxScenes]
	}

	for _, para := range paragraphs {
		if utf8.RuneCountInString(para) > minSceneParagraph {
			scenes = append(scenes, fmt.Sprintf("Scene from story about %s: %s...", topic, truncate(para, sceneExcerptLength)))
		}
	}

	if len(scenes) > 0 {
		return scenes
	}

	return []string{
		fmt.Sprintf("Opening scene of a story about %s", topic),
		fmt.Sprintf("Main character encountering %s", topic),
		fmt.Sprintf("Climactic moment involving %s", topic),
		fmt.Sprintf("Resolution scene with %s", topic),
		fmt.Sprintf("Ending scene showing the lesson about %s", topic),
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
