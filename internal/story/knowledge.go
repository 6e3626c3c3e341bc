package story

import "strings"

// Cultures offered to callers. Cultures without their own tables borrow the Indian ones.
var Cultures = []string{"Indian", "African", "European", "Native American", "Asian", "Middle Eastern", "Latin American"}

// StoryTypes offered to callers.
var StoryTypes = []string{"Folk Tale", "Legend", "Myth", "Historical Story", "Moral Story"}

// Languages the text pipeline can write in, keyed by code.
var Languages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"es": "Spanish",
	"fr": "French",
}

const defaultCulture = "Indian"

var languageInstructions = map[string]string{
	"en": "Write the story in English.",
	"hi": "कहानी हिंदी में लिखें। Use Devanagari script and Hindi language throughout the story.",
	"es": "Escribe la historia en español.",
	"fr": "Écrivez l'histoire en français.",
}

var tones = []string{
	"mystical and wise",
	"heartwarming and inspiring",
	"adventurous yet meaningful",
	"contemplative and deep",
}

// elements are the authentic ingredients a story for a culture is built from.
type elements struct {
	places     []string
	characters []string
	traditions []string
	values     []string
	symbols    []string
}

// promptElements feed the LLM prompt.
var promptElements = map[string]elements{
	"Indian": {
		places: []string{"Varanasi (oldest living city)", "Rishikesh (yoga capital)", "Mathura (Krishna's birthplace)",
			"Haridwar (holy Ganges)", "Ujjain (ancient Kshipra river)", "Pushkar (sacred lake)"},
		characters: []string{"village pandit (learned priest)", "wise grandmother (dadi)", "temple priest",
			"traveling sadhu (holy man)", "village elder", "royal guru"},
		traditions: []string{"Ganga Aarti ceremony", "Diwali festival of lights", "Holi spring festival",
			"Karva Chauth fasting", "Raksha Bandhan brother-sister bond", "Guru Purnima teacher respect"},
		values: []string{"Dharma (righteous duty)", "Ahimsa (non-violence)", "Seva (selfless service)",
			"Guru-Shishya (teacher-student)", "Atithi Devo Bhava (guest is god)"},
		symbols: []string{"Om sacred sound", "Lotus purity", "Banyan tree wisdom", "Cow motherhood", "Elephant Ganesha"},
	},
	"African": {
		places: []string{"Serengeti plains", "Victoria Falls", "Kilimanjaro mountain", "Sahara desert",
			"Congo rainforest", "Nile river source"},
		characters: []string{"tribal elder", "griot storyteller", "village chief", "medicine woman",
			"hunter-gatherer", "wise grandmother"},
		traditions: []string{"Ubuntu philosophy", "Ancestral worship", "Coming of age ceremonies",
			"Harvest festivals", "Rain-making rituals", "Oral storytelling"},
		values: []string{"Ubuntu (I am because we are)", "Respect for elders", "Community unity",
			"Connection to nature", "Ancestral wisdom"},
		symbols: []string{"Baobab tree of life", "African masks", "Drums communication", "Lion courage", "Eagle vision"},
	},
	"European": {
		places: []string{"Black Forest Germany", "Scottish Highlands", "Stonehenge England", "Alps mountains",
			"Rhine river", "Mediterranean coast"},
		characters: []string{"village blacksmith", "wise hermit", "castle lord", "forest guardian",
			"traveling minstrel", "monastery monk"},
		traditions: []string{"Harvest festivals", "Midsummer celebrations", "Christmas traditions",
			"Easter customs", "Medieval guilds", "Knightly codes"},
		values: []string{"Chivalry and honor", "Craftsmanship", "Community cooperation",
			"Respect for nature", "Christian virtues"},
		symbols: []string{"Celtic cross", "Oak tree strength", "Castle protection", "Sword justice", "Crown authority"},
	},
	"Native American": {
		places: []string{"Grand Canyon", "Yellowstone", "Black Hills", "Colorado River", "Great Plains", "Pacific Northwest"},
		characters: []string{"tribal shaman", "wise elder", "spirit guide", "medicine woman",
			"tribal chief", "young brave"},
		traditions: []string{"Vision quests", "Sweat lodge ceremonies", "Powwow gatherings", "Smudging rituals",
			"Seasonal celebrations", "Storytelling circles"},
		values: []string{"Harmony with nature", "Seven generations thinking", "Respect for all life",
			"Tribal unity", "Spiritual connection"},
		symbols: []string{"Eagle sacred messenger", "Dreamcatcher protection", "Medicine wheel", "Four directions", "Sacred fire"},
	},
}

// templateElements feed the local template story. They read better mid-sentence than
// the annotated prompt variants.
var templateElements = map[string]elements{
	"Indian": {
		places:     []string{"ancient Varanasi", "sacred Rishikesh", "holy Haridwar", "mystical Vrindavan", "royal Jaipur"},
		characters: []string{"village pandit", "wise dadi (grandmother)", "traveling sadhu", "temple priest", "learned guru"},
		traditions: []string{"Ganga Aarti ceremony", "Diwali celebrations", "Guru Purnima", "village panchayat", "sacred thread ceremony"},
		values:     []string{"Dharma (righteous duty)", "Ahimsa (non-violence)", "Seva (selfless service)", "Guru-Shishya tradition"},
		symbols:    []string{"sacred Om", "lotus flower", "banyan tree", "holy cow", "Ganesha elephant"},
	},
	"African": {
		places:     []string{"Serengeti plains", "Victoria Falls", "Kilimanjaro slopes", "Congo rainforest", "Sahara oasis"},
		characters: []string{"tribal elder", "griot storyteller", "village chief", "medicine woman", "wise grandmother"},
		traditions: []string{"Ubuntu philosophy", "ancestral ceremonies", "harvest festivals", "coming of age rituals", "oral storytelling"},
		values:     []string{"Ubuntu (I am because we are)", "ancestral wisdom", "community unity", "respect for nature"},
		symbols:    []string{"baobab tree of life", "African drums", "ancestral masks", "lion courage", "eagle vision"},
	},
	"European": {
		places:     []string{"Black Forest", "Scottish Highlands", "Rhine Valley", "Alpine meadows", "Stonehenge"},
		characters: []string{"village blacksmith", "wise hermit", "castle lord", "forest keeper", "traveling minstrel"},
		traditions: []string{"harvest festivals", "midsummer celebrations", "guild traditions", "knightly codes", "monastery life"},
		values:     []string{"chivalry and honor", "craftsmanship", "community cooperation", "Christian virtues"},
		symbols:    []string{"Celtic cross", "oak tree", "medieval castle", "knight's sword", "royal crown"},
	},
	"Native American": {
		places:     []string{"Grand Canyon", "Black Hills", "Yellowstone", "Colorado River", "Great Plains"},
		characters: []string{"tribal shaman", "wise elder", "medicine woman", "spirit guide", "tribal chief"},
		traditions: []string{"vision quests", "sweat lodge ceremonies", "powwow gatherings", "smudging rituals", "storytelling circles"},
		values:     []string{"harmony with nature", "seven generations thinking", "respect for all life", "tribal unity"},
		symbols:    []string{"sacred eagle", "dreamcatcher", "medicine wheel", "four directions", "sacred fire"},
	},
}

type topicContext struct {
	keyword string
	context string
}

// topicContexts are checked in order; the first keyword contained in the topic wins.
var topicContexts = map[string][]topicContext{
	"Indian": {
		{"elephant", "In Indian culture, elephants represent Ganesha (remover of obstacles), are symbols of wisdom and memory, and are considered sacred. Real context: Elephants in Indian temples, Airavata (Indra's elephant), elephant festivals in Kerala."},
		{"tree", "Sacred trees in Indian culture include Banyan (Brahma), Peepal (Buddha's enlightenment), Neem (healing), and Tulsi (Vishnu's consort). Real context: Village panchayats under banyan trees, tree worship traditions."},
		{"river", "Sacred rivers: Ganga (purification), Yamuna (Krishna), Saraswati (knowledge), Narmada (Shiva). Real context: Ganga Aarti ceremonies, river pilgrimages, spiritual bathing."},
		{"fire", "Sacred fire (Agni) is messenger to gods, used in yajnas (fire sacrifices), wedding ceremonies (saat phere), and Diwali lamps. Real context: Vedic fire rituals, eternal flames in temples."},
		{"mountain", "Sacred mountains: Kailash (Shiva's abode), Govardhan (Krishna lifted), Arunachala (Shiva as fire). Real context: Mountain pilgrimages, cave meditation traditions."},
	},
	"African": {
		{"elephant", "In African cultures, elephants symbolize wisdom, memory, and family bonds. Real context: Elephant matriarchs leading herds, ancestral spirits, ivory as sacred material in ceremonies."},
		{"tree", "Baobab trees are 'Tree of Life', meeting places, and ancestral spirits' homes. Real context: Community gatherings under baobabs, traditional medicine from bark."},
		{"river", "Rivers like Nile, Congo, Zambezi are life sources and spiritual pathways. Real context: River ceremonies, crocodile totems, fishing traditions."},
		{"lion", "Lions represent courage, leadership, and royal power in many African cultures. Real context: Lion clans, coming-of-age ceremonies, traditional hunting stories."},
		{"drum", "Drums are communication tools, spiritual connectors, and community heartbeat. Real context: Talking drums, ceremonial rhythms, ancestral calling."},
	},
	"European": {
		{"tree", "Sacred trees: Oak (strength, druids), Ash (Yggdrasil world tree), Hawthorn (fairy trees). Real context: Celtic tree worship, Christmas trees, May Day celebrations."},
		{"castle", "Medieval castles represent protection, feudal system, and noble heritage. Real context: Castle life, knightly codes, siege warfare, royal courts."},
		{"forest", "Enchanted forests in European folklore: Black Forest, Sherwood, Broceliande. Real context: Forest laws, hermit traditions, fairy tale origins."},
		{"knight", "Knights embody chivalry, honor, and Christian virtues. Real context: Crusades, Round Table legends, courtly love, knightly orders."},
		{"dragon", "Dragons in European lore represent chaos, treasure guardians, or wisdom. Real context: Saint George legend, Norse dragons, Welsh red dragon."},
	},
	"Native American": {
		{"eagle", "Eagles are sacred messengers between earth and sky, symbols of courage and vision. Real context: Eagle feathers in ceremonies, vision quests, tribal totems."},
		{"mountain", "Sacred mountains are prayer places and vision quest sites. Real context: Black Hills (Lakota), Mount Shasta (various tribes), ceremonial climbing."},
		{"river", "Rivers are life givers and spiritual pathways. Real context: Salmon runs, water ceremonies, river as grandmother spirit."},
		{"buffalo", "Buffalo provided everything: food, shelter, tools, and spiritual connection. Real context: Buffalo hunts, sacred white buffalo, Plains Indian culture."},
		{"fire", "Sacred fire connects to Great Spirit and ancestors. Real context: Sweat lodge fires, ceremonial pipes, eternal flames, fire keepers."},
	},
}

var defaultTopicContexts = map[string]string{
	"Indian":          "This topic should be understood through the lens of Dharma (righteous duty), Karma (action and consequence), and the interconnectedness of all life as taught in Indian philosophy.",
	"African":         "This topic should reflect Ubuntu philosophy (I am because we are), ancestral wisdom, and the deep connection between community and nature in African traditions.",
	"European":        "This topic should embody European values of honor, craftsmanship, community cooperation, and the balance between civilization and nature.",
	"Native American": "This topic should honor the Seven Generations principle, respect for all living beings, and the sacred relationship between humans and Mother Earth.",
}

// openings use %[1]s for the place, %[2]s for the character and %[3]s for the topic.
var openings = map[string][]string{
	"Indian": {
		"In the sacred city of %[1]s, where the ancient wisdom flows like the holy Ganga, there lived a %[2]s who understood the true essence of %[3]s.",
		"Long ago, when %[1]s was blessed by the gods themselves, a %[2]s discovered the divine secret of %[3]s.",
		"In the time of our ancestors, in the blessed land of %[1]s, a %[2]s was renowned for their deep connection to %[3]s.",
	},
	"African": {
		"In the heart of %[1]s, where the ancestors' spirits dance with the wind, there lived a %[2]s who held the ancient wisdom of %[3]s.",
		"When the great baobab trees were young and %[1]s echoed with the drums of creation, a %[2]s learned the sacred truth of %[3]s.",
		"In the time when %[1]s was one with the rhythm of Mother Earth, a %[2]s became the keeper of %[3]s's wisdom.",
	},
	"European": {
		"In the ancient realm of %[1]s, where stone circles hold the memories of old, there dwelt a %[2]s who mastered the art of %[3]s.",
		"When the mists of time covered %[1]s and legends walked among mortals, a %[2]s discovered the noble truth of %[3]s.",
		"In the days of honor and chivalry, in the storied land of %[1]s, a %[2]s became guardian of %[3]s's sacred knowledge.",
	},
	"Native American": {
		"In the sacred lands of %[1]s, where the Great Spirit speaks through every stone and stream, there lived a %[2]s who walked in harmony with %[3]s.",
		"When %[1]s was young and the four winds carried the prayers of the people, a %[2]s received the sacred gift of understanding %[3]s.",
		"In the time of the great vision, in the blessed territory of %[1]s, a %[2]s became one with the spirit of %[3]s.",
	},
}

type sceneVisuals struct {
	settings [5]string
	elements [5]string
}

var visuals = map[string]sceneVisuals{
	"Indian": {
		settings: [5]string{"temple courtyard with oil lamps", "Ganga riverbank at sunrise", "village under banyan tree", "palace garden with lotus pond", "mountain ashram with prayer flags"},
		elements: [5]string{"saffron robes", "temple bells", "incense smoke", "marigold garlands", "sacred fire"},
	},
	"African": {
		settings: [5]string{"village circle under baobab tree", "savanna at golden sunset", "river crossing with wildlife", "mountain cave with ancestral paintings", "desert oasis with palm trees"},
		elements: [5]string{"colorful tribal cloth", "wooden masks", "drum rhythms", "animal totems", "starlit sky"},
	},
	"European": {
		settings: [5]string{"castle great hall with tapestries", "forest clearing with stone circle", "monastery garden with herbs", "village square with market", "mountain peak with ancient ruins"},
		elements: [5]string{"medieval banners", "stained glass light", "oak tree shadows", "stone architecture", "candlelit chambers"},
	},
	"Native American": {
		settings: [5]string{"sacred mountain at dawn", "river valley with eagles", "forest clearing with medicine wheel", "canyon with ancient petroglyphs", "plains with buffalo herds"},
		elements: [5]string{"eagle feathers", "sacred smoke", "traditional patterns", "natural landscapes", "ceremonial fire"},
	},
}

var suggestions = map[string][]string{
	"Indian": {
		"The wise elephant and the village",
		"The magical banyan tree",
		"The brave princess and the dragon",
		"The merchant's journey across the mountains",
		"The festival of lights origin story",
	},
	"African": {
		"Why the lion became king of animals",
		"The clever rabbit and the crocodile",
		"The origin of the baobab tree",
		"The drummer who saved his village",
		"The story of the first rain",
	},
	"European": {
		"The knight and the enchanted forest",
		"The baker's magical bread",
		"The village that forgot how to laugh",
		"The shepherd's star",
		"The castle in the clouds",
	},
	"Native American": {
		"How the eagle got its wings",
		"The spirit of the great river",
		"The medicine woman's wisdom",
		"The dancing bear ceremony",
		"The legend of the dreamcatcher",
	},
}

var genericSuggestions = []string{
	"The wise elder's teaching",
	"The magical object's journey",
	"The brave hero's quest",
	"The origin of a tradition",
	"The animal's great adventure",
}

// Suggestions returns five topic ideas for a culture.
func Suggestions(culture string) []string {
	if s, ok := suggestions[culture]; ok {
		return append([]string(nil), s...)
	}
	return append([]string(nil), genericSuggestions...)
}

// lookup returns the table entry for culture, or the default culture's entry.
func lookup[V any](table map[string]V, culture string) V {
	if v, ok := table[culture]; ok {
		return v
	}
	return table[defaultCulture]
}

// TopicContext returns the cultural background for a topic, matched by keyword.
func TopicContext(topic, culture string) string {
	lower := strings.ToLower(topic)
	for _, c := range lookup(topicContexts, culture) {
		if strings.Contains(lower, c.keyword) {
			return c.context
		}
	}
	return lookup(defaultTopicContexts, culture)
}
