// Package mood defines the closed set of moods that drive catalog search
// terms and the per-mood tag vocabularies.
package mood

// Mood identifies one of the fixed mood categories.
type Mood string

const (
	LonelyHopeful Mood = "lonely-hopeful"
	ChaoticEnergy Mood = "chaotic-energy"
	VillainEra    Mood = "villain-era"
	NostalgiaCore Mood = "nostalgia-core"
	ZenMode       Mood = "zen-mode"
	MainCharacter Mood = "main-character"
)

// Info describes a mood's presentation and catalog mapping.
type Info struct {
	ID            Mood
	Name          string
	GradientFrom  string
	GradientTo    string
	SearchQuery   string
	SearchTags    []string
	SoundLayers   []string
	VisualFilters []string
}

var registry = map[Mood]Info{
	LonelyHopeful: {
		ID:            LonelyHopeful,
		Name:          "Lonely but Hopeful",
		GradientFrom:  "blue-400",
		GradientTo:    "purple-500",
		SearchQuery:   "ambient melancholic hopeful",
		SearchTags:    []string{"ambient", "melancholic", "calm", "atmospheric"},
		SoundLayers:   []string{"ambient-pad", "soft-piano", "rain-background"},
		VisualFilters: []string{"blue-tint", "soft-focus", "light-leak"},
	},
	ChaoticEnergy: {
		ID:            ChaoticEnergy,
		Name:          "Chaotic Energy",
		GradientFrom:  "red-500",
		GradientTo:    "yellow-500",
		SearchQuery:   "electronic upbeat energetic",
		SearchTags:    []string{"electronic", "energetic", "upbeat", "dance"},
		SoundLayers:   []string{"glitch-beats", "distortion", "fast-synth"},
		VisualFilters: []string{"glitch", "high-contrast", "rgb-split"},
	},
	VillainEra: {
		ID:            VillainEra,
		Name:          "Villain Era",
		GradientFrom:  "black",
		GradientTo:    "purple-900",
		SearchQuery:   "dark intense dramatic",
		SearchTags:    []string{"dark", "intense", "dramatic", "cinematic"},
		SoundLayers:   []string{"dark-bass", "suspense", "cinematic"},
		VisualFilters: []string{"dark-vignette", "desaturated", "film-grain"},
	},
	NostalgiaCore: {
		ID:            NostalgiaCore,
		Name:          "Nostalgia Core",
		GradientFrom:  "amber-200",
		GradientTo:    "pink-300",
		SearchQuery:   "retro nostalgic warm",
		SearchTags:    []string{"retro", "nostalgic", "warm", "lofi"},
		SoundLayers:   []string{"vinyl-crackle", "retro-synth", "tape-echo"},
		VisualFilters: []string{"vhs", "sepia", "polaroid"},
	},
	ZenMode: {
		ID:            ZenMode,
		Name:          "Zen Mode",
		GradientFrom:  "teal-300",
		GradientTo:    "blue-300",
		SearchQuery:   "calm meditation ambient",
		SearchTags:    []string{"calm", "meditation", "ambient", "relaxing"},
		SoundLayers:   []string{"nature-sounds", "meditation-bells", "slow-pad"},
		VisualFilters: []string{"pastel", "blur", "soft-light"},
	},
	MainCharacter: {
		ID:            MainCharacter,
		Name:          "Main Character",
		GradientFrom:  "orange-400",
		GradientTo:    "pink-500",
		SearchQuery:   "epic cinematic motivational",
		SearchTags:    []string{"epic", "cinematic", "motivational", "inspiring"},
		SoundLayers:   []string{"epic-drums", "motivational", "uplifting"},
		VisualFilters: []string{"cinematic", "warm", "anamorphic"},
	},
}

// order fixes the presentation order of the mood grid.
var order = []Mood{LonelyHopeful, ChaoticEnergy, VillainEra, NostalgiaCore, ZenMode, MainCharacter}

// All returns every mood in presentation order.
func All() []Info {
	infos := make([]Info, 0, len(order))
	for _, id := range order {
		infos = append(infos, registry[id])
	}
	return infos
}

// Lookup returns the Info for a mood, reporting whether it is known.
func Lookup(id Mood) (Info, bool) {
	info, ok := registry[id]
	return info, ok
}

// Valid reports whether the mood belongs to the fixed set.
func Valid(id Mood) bool {
	_, ok := registry[id]
	return ok
}

// SearchQuery returns the catalog query for a mood. Unknown moods fall back
// to the raw string so free-text searches flow through the same path.
func SearchQuery(moodOrQuery string) (query string, tags []string) {
	if info, ok := registry[Mood(moodOrQuery)]; ok {
		return info.SearchQuery, info.SearchTags
	}
	return moodOrQuery, nil
}

// SoundLayers returns the fixed sound-layer options for a mood. Unknown
// moods yield an empty list.
func SoundLayers(id Mood) []string {
	if info, ok := registry[id]; ok {
		return info.SoundLayers
	}
	return nil
}

// VisualFilters returns the fixed visual-filter options for a mood. Unknown
// moods yield an empty list.
func VisualFilters(id Mood) []string {
	if info, ok := registry[id]; ok {
		return info.VisualFilters
	}
	return nil
}
