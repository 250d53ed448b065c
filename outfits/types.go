// Package outfits ranks outfit combinations from a tagged wardrobe.
//
// Everything here is a pure computation over its arguments: the same items,
// weather and preferences always produce the same ranked suggestions.
package outfits

// ClothingItem is one garment with its tagged attributes. Only Category,
// Color and Warmth are expected to be set; every other attribute falls back
// to a permissive default when absent.
type ClothingItem struct {
	ID      string
	OwnerID string

	Category Category
	Color    string
	Warmth   WarmthLevel
	Tags     []string

	StyleAesthetic  []string
	Formality       FormalityLevel
	Material        string
	Season          []string
	Pattern         string
	ColorIntensity  ColorIntensity
	Texture         string
	WaterResistance WaterResistance
	Layering        LayeringPosition
	Versatility     *int
	Condition       ConditionStatus
	Compliments     ComplimentFrequency
	Breathability   Breathability
}

// WeatherSnapshot describes conditions at suggestion time. Temperature is in °C.
type WeatherSnapshot struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Description string  `json:"description,omitempty"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	City        string  `json:"city"`
}

type Preferences struct {
	PreferredColors     []string
	PreferredCategories []Category
}

// Suggestion is a scored outfit. Items always holds at least two garments.
type Suggestion struct {
	Items     []ClothingItem
	Score     float64
	Reasoning string
}

// ItemIDs returns the ids of the suggested items in outfit order.
func (s Suggestion) ItemIDs() []string {
	ids := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
