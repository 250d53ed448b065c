package outfits

import (
	"strings"
)

const (
	footwearBonus     = 15
	outerwearBonus    = 20
	styleClashPenalty = -25
	formalityPenalty  = -20
)

// weatherContext is the weather classification shared by generation and scoring.
type weatherContext struct {
	present     bool
	temperature float64
	cold        bool
	warm        bool
	raining     bool
	snowing     bool
	wet         bool // rain or snow; drizzle only affects layering
	target      WarmthLevel
}

func newWeatherContext(weather *WeatherSnapshot) weatherContext {
	wc := weatherContext{temperature: 20}
	condition := "clear"
	if weather != nil {
		wc.present = true
		wc.temperature = weather.Temperature
		condition = strings.ToLower(weather.Condition)
	}

	wc.cold = wc.temperature < 10
	wc.warm = wc.temperature > 25
	wc.raining = strings.Contains(condition, "rain") || strings.Contains(condition, "drizzle")
	wc.snowing = strings.Contains(condition, "snow")
	wc.wet = strings.Contains(condition, "rain") || wc.snowing

	switch {
	case wc.temperature < 5:
		wc.target = WarmthHeavy
	case wc.temperature < 15:
		wc.target = WarmthMedium
	default:
		wc.target = WarmthLight
	}
	return wc
}

// candidate is an unscored outfit along with the adjustments made while building it.
type candidate struct {
	items      []ClothingItem
	base       string
	adjustment float64
	clauses    []string
}

func (c *candidate) attach(item ClothingItem, points float64, clause string) {
	c.items = append(c.items, item)
	c.note(points, clause)
}

func (c *candidate) note(points float64, clause string) {
	c.adjustment += points
	c.clauses = append(c.clauses, clause)
}

func describe(item ClothingItem) string {
	return strings.TrimSpace(item.Color + " " + item.Category.String())
}

func (e *Engine) generate(groups Groups, wc weatherContext, weather *WeatherSnapshot) []candidate {
	var candidates []candidate

	shoes := groups[CategoryShoes]
	layers := make([]ClothingItem, 0, len(groups[CategoryJacket])+len(groups[CategoryOuterwear]))
	layers = append(layers, groups[CategoryJacket]...)
	layers = append(layers, groups[CategoryOuterwear]...)

	for _, dress := range firstN(groups[CategoryDress], capOr(e.MaxDresses, defaultMaxDresses)) {
		c := candidate{
			items: []ClothingItem{dress},
			base:  "Elegant dress-based outfit featuring a " + describe(dress),
		}

		for _, shoe := range shoes {
			if StyleCompatible(dress, shoe) && FormalityCompatible(dress, shoe) {
				c.attach(shoe, footwearBonus, "Paired with complementary footwear")
				break
			}
		}

		if wc.cold || wc.raining {
			for _, layer := range layers {
				if WeatherAppropriate(layer, weather) && FormalityCompatible(dress, layer) {
					c.attach(layer, outerwearBonus, "Added weather-appropriate outerwear")
					break
				}
			}
		}

		if len(c.items) >= 2 {
			candidates = append(candidates, c)
		}
	}

	for _, top := range firstN(groups[CategoryTop], capOr(e.MaxTops, defaultMaxTops)) {
		for _, bottom := range firstN(groups[CategoryBottom], capOr(e.MaxBottoms, defaultMaxBottoms)) {
			c := candidate{
				items: []ClothingItem{top, bottom},
				base:  "Coordinated outfit with " + describe(top) + " and " + describe(bottom),
			}

			if !StyleCompatible(top, bottom) {
				c.note(styleClashPenalty, "Style mixing may require careful coordination")
			}
			if !FormalityCompatible(top, bottom) {
				c.note(formalityPenalty, "Mixed formality levels")
			}

			for _, shoe := range shoes {
				if FormalityCompatible(top, shoe) && FormalityCompatible(bottom, shoe) {
					c.attach(shoe, footwearBonus, "Completed with appropriate footwear")
					break
				}
			}

			if wc.cold || wc.raining || wc.snowing {
				for _, layer := range layers {
					if WeatherAppropriate(layer, weather) && FormalityCompatible(top, layer) && LayeringCompatible(layer, top) {
						c.attach(layer, outerwearBonus, "Enhanced with weather protection")
						break
					}
				}
			}

			candidates = append(candidates, c)
		}
	}
	return candidates
}
