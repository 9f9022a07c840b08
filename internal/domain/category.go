package domain

// Category is the kind of meetup
type Category string

const (
	Vibes   Category = "Vibes"
	Friends Category = "Friends"
	Workout Category = "Workout"
	Try     Category = "Try"
)

// Categories lists categories in display and generation order
var Categories = []Category{Vibes, Friends, Workout, Try}

// CategoryMeta holds a category's display attributes
type CategoryMeta struct {
	Key   Category `json:"key"`
	Label string   `json:"label"`
	Icon  string   `json:"icon"`
	Color string   `json:"color"`
}

type categoryCopy struct {
	meta         CategoryMeta
	desc         string
	who          string
	todo         []string
	defaultTitle string
}

var categoryTable = map[Category]categoryCopy{
	Vibes: {
		meta:         CategoryMeta{Key: Vibes, Label: "Vibes", Icon: "✨", Color: "#FF5CAB"},
		desc:         "Light, simple, decide fast.",
		who:          "Casual first meet. Public place only.",
		todo:         []string{"Say hi & set a single goal", "Walk 2–3 blocks", "Wrap on time"},
		defaultTitle: "Walk & Talk",
	},
	Friends: {
		meta:         CategoryMeta{Key: Friends, Label: "Friends", Icon: "🤝", Color: "#2EE778"},
		desc:         "Two people, one theme. Kind feedback only.",
		who:          "Friendly builders & curious minds.",
		todo:         []string{"Pick one topic only", "Swap one tip each", "Wrap on time"},
		defaultTitle: "Bench Talk",
	},
	Workout: {
		meta:         CategoryMeta{Key: Workout, Label: "Move", Icon: "💪", Color: "#FFA23B"},
		desc:         "Easy pace; headphones off.",
		who:          "Light movers. No pressure.",
		todo:         []string{"Warm up together", "Choose 2–3 light drills", "Cool down & water"},
		defaultTitle: "Jog & Talk",
	},
	Try: {
		meta:         CategoryMeta{Key: Try, Label: "Try", Icon: "🧪", Color: "#6AAEFF"},
		desc:         "Short real-world tryout. No pressure, just taste & see.",
		who:          "Curious people who like tasting, testing, trying new things.",
		todo:         []string{"Meet at the exact spot or store", "Try the thing together (food, product, space)", "Share one honest thought each and wrap on time"},
		defaultTitle: "Try Something New",
	},
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Meta returns label, icon and colour
func (c Category) Meta() CategoryMeta {
	return categoryTable[c].meta
}

// Label is the display name, "Move" for Workout
func (c Category) Label() string {
	return categoryTable[c].meta.Label
}

// DefaultDesc is the description used when a host leaves it blank
func (c Category) DefaultDesc() string {
	return categoryTable[c].desc
}

// Who describes the intended audience
func (c Category) Who() string {
	return categoryTable[c].who
}

// Todo returns a fresh copy of the suggested agenda
func (c Category) Todo() []string {
	return cloneStrings(categoryTable[c].todo)
}

// DefaultTitle is the title used when a host leaves it blank
func (c Category) DefaultTitle() string {
	return categoryTable[c].defaultTitle
}

// AllCategoryMeta returns metadata for every category in display order
func AllCategoryMeta() []CategoryMeta {
	out := make([]CategoryMeta, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, c.Meta())
	}
	return out
}
