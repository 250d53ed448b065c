package outfits

import "strings"

type stylePair struct{ a, b string }

var compatibleStyles = []stylePair{
	{"classic", "minimalist"},
	{"chic", "modern"},
	{"casual", "streetwear"},
	{"elegant", "sophisticated"},
	{"trendy", "modern"},
}

var neutralColors = []string{"black", "white", "gray", "grey", "beige", "brown", "navy"}

var complementaryColors = [][2]string{
	{"blue", "white"}, {"blue", "black"}, {"blue", "gray"},
	{"red", "black"}, {"red", "white"}, {"red", "gray"},
	{"green", "brown"}, {"green", "beige"}, {"green", "white"},
	{"yellow", "blue"}, {"yellow", "brown"}, {"yellow", "white"},
	{"purple", "black"}, {"purple", "white"}, {"purple", "gray"},
}

// StyleCompatible reports whether two items can be worn together stylistically.
// Items without style tags go with anything.
func StyleCompatible(a, b ClothingItem) bool {
	if len(a.StyleAesthetic) == 0 || len(b.StyleAesthetic) == 0 {
		return true
	}

	for _, sa := range a.StyleAesthetic {
		for _, sb := range b.StyleAesthetic {
			if strings.EqualFold(strings.TrimSpace(sa), strings.TrimSpace(sb)) {
				return true
			}
		}
	}

	for _, pair := range compatibleStyles {
		if hasStyle(a, pair.a) && hasStyle(b, pair.b) || hasStyle(a, pair.b) && hasStyle(b, pair.a) {
			return true
		}
	}
	return false
}

func hasStyle(item ClothingItem, style string) bool {
	for _, s := range item.StyleAesthetic {
		if strings.EqualFold(strings.TrimSpace(s), style) {
			return true
		}
	}
	return false
}

// FormalityCompatible allows at most one step between formality levels.
func FormalityCompatible(a, b ClothingItem) bool {
	diff := a.Formality.rank() - b.Formality.rank()
	return diff >= -1 && diff <= 1
}

// WeatherAppropriate reports whether the item may be worn in the given weather.
func WeatherAppropriate(item ClothingItem, weather *WeatherSnapshot) bool {
	if weather == nil {
		return true
	}

	if weather.Temperature < 5 && item.Warmth == WarmthLight {
		return false
	}
	if weather.Temperature > 25 && item.Warmth == WarmthHeavy {
		return false
	}

	if strings.Contains(strings.ToLower(weather.Condition), "rain") && !item.WaterResistance.Protective() {
		return item.Category != CategoryJacket && item.Category != CategoryOuterwear
	}
	return true
}

// LayeringCompatible reports whether outer can be worn over inner.
func LayeringCompatible(outer, inner ClothingItem) bool {
	return outer.Layering.rankOr(LayeringOuter) > inner.Layering.rankOr(LayeringMid)
}

// ColorsMatch reports whether two free-text colors go together.
func ColorsMatch(c1, c2 string) bool {
	c1 = strings.ToLower(strings.TrimSpace(c1))
	c2 = strings.ToLower(strings.TrimSpace(c2))

	if isNeutral(c1) || isNeutral(c2) {
		return true
	}
	if c1 == c2 {
		return true
	}

	for _, pair := range complementaryColors {
		if strings.Contains(c1, pair[0]) && strings.Contains(c2, pair[1]) ||
			strings.Contains(c1, pair[1]) && strings.Contains(c2, pair[0]) {
			return true
		}
	}
	return false
}

func isNeutral(color string) bool {
	for _, n := range neutralColors {
		if color == n {
			return true
		}
	}
	return false
}
