package story

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/eternisai/taleweaver/internal/pipeline"
)

// TemplateProviderName is the name of the local template fallback.
const TemplateProviderName = "template"

// Template writes a story from local templates and the cultural knowledge tables. It never
// touches the network and always succeeds; the same parameters yield the same story.
type Template struct{}

// Name implements pipeline.Provider.
func (Template) Name() string { return TemplateProviderName }

// Attempt implements pipeline.Provider.
func (Template) Attempt(_ context.Context, req pipeline.Request, _ *pipeline.Workspace) (Story, error) {
	return Compose(ParamsFrom(req)), nil
}

// Compose renders the template story for p.
func Compose(p Params) Story {
	r := seededPicker(p)

	var s Story
	switch p.Language {
	case "hi":
		s = composeHindi(p, r)
	case "es":
		s = composeSpanish(p, r)
	case "fr":
		s = composeFrench(p, r)
	default:
		s = composeEnglish(p, r)
	}
	return s.withParams(p)
}

func seededPicker(p Params) picker {
	h := fnv.New64a()
	for _, part := range []string{strings.ToLower(p.Topic), p.Culture, strings.ToLower(p.StoryType), p.Language} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed>>7|1)).IntN
}

func composeEnglish(p Params, r picker) Story {
	el := lookup(templateElements, p.Culture)
	place := pick(r, el.places)
	character := pick(r, el.characters)
	tradition := pick(r, el.traditions)
	value := pick(r, el.values)
	symbol := pick(r, el.symbols)
	background := TopicContext(p.Topic, p.Culture)

	placeWords := strings.Fields(place)
	title := fmt.Sprintf("The Sacred %s of %s", titleCase(p.Topic), placeWords[len(placeWords)-1])

	opening := fmt.Sprintf(pick(r, lookup(openings, p.Culture)), place, character, p.Topic)
	topic := p.Topic

	paragraphs := []string{
		opening,
		fmt.Sprintf("The people of the community had always honored the tradition of %s, but few truly understood how it connected to the deeper meaning of %s. %s", tradition, topic, background),
		fmt.Sprintf("One day, a great challenge arose that tested the very foundation of their beliefs. The community was troubled, for they had forgotten the ancient ways that their ancestors had taught them about %s. The %s that had always guided them seemed to have lost its power.", topic, symbol),
		fmt.Sprintf("The %s knew that this was a time for great wisdom. Drawing upon the sacred tradition of %s, they began to teach the people the true meaning of %s. Through patience, ceremony, and the guidance of ancestral wisdom, the community began to understand.", character, tradition, topic),
		fmt.Sprintf("The %s once again shone with its ancient power, for the people had rediscovered the sacred connection between %s and the cultural value of %s. The tradition of %s was renewed with deeper understanding.", symbol, topic, value, tradition),
		fmt.Sprintf("From that day forward, the story of %s was passed down through generations, always connected to the sacred tradition of %s and the guiding symbol of %s. The people learned that %s and the wisdom of %s are inseparable, like the earth and sky.", topic, tradition, symbol, value, topic),
		fmt.Sprintf("And so the ancient wisdom lives on, teaching us that %s is not merely a concept, but a living truth that connects us to our ancestors, our community, and the sacred world around us.", topic),
	}

	v := lookup(visuals, p.Culture)
	scenes := []string{
		fmt.Sprintf("The %s in %s contemplating %s with %s and %s", character, place, topic, v.elements[0], v.settings[0]),
		fmt.Sprintf("Community gathering around %s seeking wisdom about %s in %s with %s", symbol, topic, v.settings[1], v.elements[1]),
		fmt.Sprintf("The moment of teaching when %s reveals the truth of %s in %s illuminated by %s", character, topic, v.settings[2], v.elements[2]),
		fmt.Sprintf("The transformation scene where the community understands %s in %s decorated with %s", topic, v.settings[3], v.elements[3]),
		fmt.Sprintf("The celebration of renewed wisdom about %s in %s under %s", topic, v.settings[4], v.elements[4]),
	}

	return Story{
		Title:         title,
		Content:       strings.Join(paragraphs, "\n\n"),
		Scenes:        scenes,
		Moral:         fmt.Sprintf("This %s story teaches us that %s and understanding of '%s' brings wisdom and harmony to our lives.", p.Culture, value, topic),
		CulturalNotes: fmt.Sprintf("This story incorporates authentic %s elements: %s, %s, and the cultural value of %s.", p.Culture, tradition, symbol, value),
	}
}

func composeHindi(p Params, r picker) Story {
	t := p.Topic
	opening := pick(r, []string{
		fmt.Sprintf("बहुत समय पहले, %s के बारे में एक अद्भुत कहानी थी।", t),
		fmt.Sprintf("एक समय की बात है, जब %s का रहस्य सभी को पता नहीं था।", t),
		fmt.Sprintf("प्राचीन काल में, %s की शक्ति से सभी परिचित थे।", t),
	})

	paragraphs := []string{
		opening,
		fmt.Sprintf("एक छोटे से गांव में एक बुद्धिमान व्यक्ति रहता था जो %s के बारे में सब कुछ जानता था। गांव के लोग जब भी किसी समस्या में होते, वे उसके पास जाते थे।", t),
		fmt.Sprintf("एक दिन, गांव में बड़ी समस्या आई। लोग परेशान थे और नहीं जानते थे कि क्या करें। तब बुद्धिमान व्यक्ति ने %s की शक्ति का उपयोग करके सभी की मदद की।", t),
		fmt.Sprintf("उसने सभी को सिखाया कि %s केवल एक चीज़ नहीं है, बल्कि यह जीवन का एक महत्वपूर्ण हिस्सा है। जो लोग %s को समझते हैं, वे जीवन में सफल होते हैं।", t, t),
		fmt.Sprintf("गांव के लोगों ने इस सीख को अपने बच्चों को भी दिया। आज भी वह गांव %s की शिक्षा के लिए प्रसिद्ध है।", t),
		"इस कहानी से हमें पता चलता है कि ज्ञान और समझदारी से हर समस्या का समाधान मिल सकता है।",
	}

	return Story{
		Title:   fmt.Sprintf("%s की अद्भुत कहानी", t),
		Content: strings.Join(paragraphs, "\n\n"),
		Scenes: []string{
			fmt.Sprintf("एक बुद्धिमान व्यक्ति %s के साथ गांव में", t),
			"गांव के लोग समस्या में परेशान",
			fmt.Sprintf("%s की शक्ति का प्रदर्शन", t),
			"गांव में खुशी और समृद्धि",
			fmt.Sprintf("बच्चों को %s की शिक्षा", t),
		},
		Moral: fmt.Sprintf("ज्ञान और %s की समझ से जीवन में सफलता मिलती है।", t),
	}
}

func composeSpanish(p Params, r picker) Story {
	t := p.Topic
	opening := pick(r, []string{
		fmt.Sprintf("Hace mucho tiempo, había una historia maravillosa sobre %s.", t),
		fmt.Sprintf("Érase una vez, cuando el misterio de %s no era conocido por todos.", t),
		fmt.Sprintf("En tiempos antiguos, todos conocían el poder de %s.", t),
	})

	paragraphs := []string{
		opening,
		fmt.Sprintf("En un pequeño pueblo vivía una persona sabia que sabía todo sobre %s. Cuando la gente del pueblo tenía problemas, siempre acudían a esta persona.", t),
		fmt.Sprintf("Un día, llegó un gran problema al pueblo. La gente estaba preocupada y no sabía qué hacer. Entonces, la persona sabia usó el poder de %s para ayudar a todos.", t),
		fmt.Sprintf("Enseñó a todos que %s no es solo una cosa, sino una parte importante de la vida. Las personas que entienden %s tienen éxito en la vida.", t, t),
		fmt.Sprintf("La gente del pueblo también enseñó esta lección a sus hijos. Hoy en día, ese pueblo sigue siendo famoso por la enseñanza de %s.", t),
		"Esta historia nos muestra que con conocimiento y sabiduría, se puede encontrar una solución a cualquier problema.",
	}

	return Story{
		Title:   fmt.Sprintf("La Historia Maravillosa de %s", t),
		Content: strings.Join(paragraphs, "\n\n"),
		Scenes: []string{
			fmt.Sprintf("Una persona sabia con %s en el pueblo", t),
			"La gente del pueblo preocupada por el problema",
			fmt.Sprintf("La demostración del poder de %s", t),
			"Felicidad y prosperidad en el pueblo",
			fmt.Sprintf("Enseñando a los niños sobre %s", t),
		},
		Moral: fmt.Sprintf("El conocimiento y la comprensión de %s traen éxito en la vida.", t),
	}
}

func composeFrench(p Params, r picker) Story {
	t := p.Topic
	opening := pick(r, []string{
		fmt.Sprintf("Il y a longtemps, il y avait une histoire merveilleuse sur %s.", t),
		fmt.Sprintf("Il était une fois, quand le mystère de %s n'était pas connu de tous.", t),
		fmt.Sprintf("Dans les temps anciens, tout le monde connaissait le pouvoir de %s.", t),
	})

	paragraphs := []string{
		opening,
		fmt.Sprintf("Dans un petit village vivait une personne sage qui savait tout sur %s. Quand les gens du village avaient des problèmes, ils venaient toujours voir cette personne.", t),
		fmt.Sprintf("Un jour, un grand problème arriva au village. Les gens étaient inquiets et ne savaient pas quoi faire. Alors, la personne sage utilisa le pouvoir de %s pour aider tout le monde.", t),
		fmt.Sprintf("Elle enseigna à tous que %s n'est pas seulement une chose, mais une partie importante de la vie. Les personnes qui comprennent %s réussissent dans la vie.", t, t),
		fmt.Sprintf("Les gens du village enseignèrent aussi cette leçon à leurs enfants. Aujourd'hui encore, ce village est célèbre pour l'enseignement de %s.", t),
		"Cette histoire nous montre qu'avec la connaissance et la sagesse, on peut trouver une solution à n'importe quel problème.",
	}

	return Story{
		Title:   fmt.Sprintf("L'Histoire Merveilleuse de %s", t),
		Content: strings.Join(paragraphs, "\n\n"),
		Scenes: []string{
			fmt.Sprintf("Une personne sage avec %s dans le village", t),
			"Les gens du village inquiets du problème",
			fmt.Sprintf("La démonstration du pouvoir de %s", t),
			"Bonheur et prospérité dans le village",
			fmt.Sprintf("Enseigner aux enfants sur %s", t),
		},
		Moral: fmt.Sprintf("La connaissance et la compréhension de %s apportent le succès dans la vie.", t),
	}
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	start := true
	for _, r := range s {
		if unicode.IsLetter(r) {
			if start {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			start = false
			continue
		}
		start = r != '\''
		b.WriteRune(r)
	}
	return b.String()
}
