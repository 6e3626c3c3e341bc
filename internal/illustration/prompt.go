package illustration

import (
	"fmt"
	"strings"
)

var topicSettings = map[string]string{
	"Indian":          "in traditional Indian setting with temples, saris, and warm golden colors",
	"African":         "in African savanna with tribal patterns and earth tones",
	"European":        "in medieval European setting with castles and forests",
	"Native American": "in natural American landscape with sacred symbols",
	"Asian":           "in traditional Asian setting with pagodas and cherry blossoms",
	"Middle Eastern":  "in Middle Eastern setting with deserts and ancient architecture",
	"Latin American":  "in Latin American setting with vibrant colors and cultural elements",
}

type palette struct {
	colors       string
	architecture string
	clothing     string
	nature       string
	decorative   string
}

var culturalPalettes = map[string]palette{
	"Indian": {
		colors:       "warm golden, saffron, deep red, emerald green",
		architecture: "ancient temples, carved pillars, ornate domes",
		clothing:     "colorful saris, traditional dhoti, royal attire",
		nature:       "lotus flowers, banyan trees, sacred rivers",
		decorative:   "intricate patterns, rangoli designs, diyas",
	},
	"African": {
		colors:       "earth tones, sunset orange, deep brown, vibrant red",
		architecture: "mud huts, tribal structures, baobab trees",
		clothing:     "colorful tribal patterns, traditional robes, beadwork",
		nature:       "savanna landscape, acacia trees, wildlife",
		decorative:   "tribal masks, geometric patterns, ceremonial items",
	},
	"European": {
		colors:       "medieval blues, forest green, stone gray, royal purple",
		architecture: "stone castles, wooden cottages, church spires",
		clothing:     "medieval robes, peasant clothing, royal garments",
		nature:       "enchanted forests, mountain landscapes, flowing rivers",
		decorative:   "heraldic symbols, Celtic patterns, stained glass",
	},
	"Native American": {
		colors:       "earth tones, turquoise, sunset red, natural brown",
		architecture: "tepees, pueblo buildings, natural rock formations",
		clothing:     "feathered headdresses, leather garments, beadwork",
		nature:       "vast plains, sacred mountains, flowing rivers",
		decorative:   "dreamcatchers, totem poles, sacred symbols",
	},
}

// topicKeywords enrich scene prompts with visual detail. Order is kept so prompts are stable.
var topicKeywords = []struct {
	keyword, detail string
}{
	{"elephant", "majestic elephant, large tusks, wise eyes, gentle giant"},
	{"tree", "ancient tree, spreading branches, lush foliage, sacred presence"},
	{"river", "flowing water, riverbank, reflection, life-giving stream"},
	{"mountain", "towering peak, rocky slopes, misty summit, natural majesty"},
	{"bird", "graceful bird, spread wings, colorful feathers, soaring flight"},
	{"eagle", "powerful eagle, sharp talons, keen eyes, mountain perch"},
	{"lion", "mighty lion, golden mane, regal presence, king of animals"},
	{"tiger", "striped tiger, powerful build, jungle setting, fierce beauty"},
	{"peacock", "colorful peacock, fanned tail, iridescent feathers, dancing display"},
	{"lotus", "blooming lotus, pink petals, sacred flower, water lily"},
	{"fire", "sacred fire, dancing flames, warm glow, ceremonial light"},
	{"water", "clear water, rippling surface, life essence, purifying element"},
	{"sun", "golden sun, bright rays, warm light, celestial body"},
	{"moon", "silver moon, gentle glow, night sky, celestial beauty"},
	{"star", "twinkling stars, night sky, celestial light, cosmic wonder"},
	{"flower", "beautiful flowers, colorful petals, natural beauty, blooming garden"},
	{"forest", "dense forest, tall trees, dappled sunlight, woodland scene"},
	{"ocean", "vast ocean, rolling waves, blue waters, endless horizon"},
	{"butterfly", "colorful butterfly, delicate wings, graceful flight, transformation"},
	{"snake", "serpentine form, scaled skin, coiled body, mystical presence"},
	{"horse", "noble horse, flowing mane, powerful stride, graceful movement"},
	{"cow", "gentle cow, sacred animal, peaceful presence, nurturing spirit"},
	{"monkey", "playful monkey, agile movement, expressive face, tree dwelling"},
	{"fish", "swimming fish, scaled body, underwater scene, aquatic life"},
	{"turtle", "wise turtle, protective shell, slow movement, ancient wisdom"},
	{"rabbit", "cute rabbit, long ears, fluffy tail, quick movement"},
	{"deer", "graceful deer, gentle eyes, forest dwelling, elegant form"},
	{"bear", "strong bear, thick fur, powerful presence, forest guardian"},
	{"wolf", "wild wolf, pack animal, howling moon, forest predator"},
	{"fox", "clever fox, red fur, bushy tail, cunning expression"},
}

// TopicPrompt describes the cover image for a story topic.
func TopicPrompt(topic, culture, style string) string {
	setting, ok := topicSettings[culture]
	if !ok {
		setting = "in beautiful cultural setting"
	}
	return fmt.Sprintf("%s illustration of %s %s, highly detailed, beautiful composition, cultural authenticity, family-friendly", style, topic, setting)
}

// ScenePrompt enriches a scene description with the culture's visual palette and details
// drawn from the topic.
func ScenePrompt(scene, culture, topic, style string) string {
	pal, ok := culturalPalettes[culture]
	if !ok {
		pal = culturalPalettes["Indian"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s cultural %s illustration: %s\n\n", culture, style, scene)
	fmt.Fprintf(&b, "Key elements to include: %s\n", TopicKeywords(topic))
	fmt.Fprintf(&b, "Visual style: %s color palette\n", pal.colors)
	fmt.Fprintf(&b, "Cultural details: %s, %s\n", pal.architecture, pal.clothing)
	fmt.Fprintf(&b, "Natural elements: %s\n", pal.nature)
	fmt.Fprintf(&b, "Decorative elements: %s\n\n", pal.decorative)
	fmt.Fprintf(&b, "Make sure the image clearly shows elements related to %q in %s cultural context.\n", topic, culture)
	b.WriteString("Beautiful, detailed, family-friendly artwork suitable for storytelling.")
	return b.String()
}

// TopicKeywords returns visual details for every known keyword in topic.
func TopicKeywords(topic string) string {
	lower := strings.ToLower(topic)

	var details []string
	for _, k := range topicKeywords {
		if strings.Contains(lower, k.keyword) {
			details = append(details, k.detail)
		}
	}
	if len(details) == 0 {
		return topic + ", detailed representation, culturally authentic"
	}
	return strings.Join(details, ", ")
}

// pollinationsPrompt condenses a description for the Pollinations endpoint, which does better
// with short prompts.
func pollinationsPrompt(description, style string) string {
	scene := strings.TrimSpace(description)
	if len([]rune(scene)) > 150 {
		scene = truncate(scene, 150) + "..."
	}
	return truncate(fmt.Sprintf("%s illustration of %s, high quality, detailed, beautiful colors, family-friendly", style, scene), 200)
}

func dallePrompt(description, style string) string {
	return truncate(fmt.Sprintf("%s illustration of %s", style, strings.TrimSpace(description)), 1000)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
