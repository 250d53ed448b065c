package outfits

import (
	"fmt"
	"math"
	"strings"
)

const baseScore = 100

// scoreCandidate turns a generated candidate into a suggestion. The score is
// the base plus every adjustment, floored at zero.
func scoreCandidate(c candidate, wc weatherContext, prefs *Preferences) Suggestion {
	total := baseScore + c.adjustment
	clauses := append([]string(nil), c.clauses...)

	if len(c.items) >= 2 && c.items[0].Color != "" && c.items[1].Color != "" &&
		ColorsMatch(c.items[0].Color, c.items[1].Color) {
		clauses = append(clauses, "Colors complement each other")
	}

	for _, bonus := range []func([]ClothingItem, weatherContext, *Preferences) (float64, []string){
		harmonyBonus,
		weatherBonus,
		preferenceBonus,
		versatilityBonus,
	} {
		points, notes := bonus(c.items, wc, prefs)
		total += points
		clauses = append(clauses, notes...)
	}

	reasoning := c.base
	if len(clauses) > 0 {
		reasoning += ". " + strings.Join(clauses, ". ")
	}

	return Suggestion{
		Items:     c.items,
		Score:     math.Max(0, total),
		Reasoning: reasoning,
	}
}

func harmonyBonus(items []ClothingItem, _ weatherContext, _ *Preferences) (float64, []string) {
	var points float64
	var notes []string

	intensities := map[ColorIntensity]struct{}{}
	textures := map[string]struct{}{}
	patterned := 0
	for _, item := range items {
		intensities[item.ColorIntensity.orMedium()] = struct{}{}
		if t := strings.ToLower(strings.TrimSpace(item.Texture)); t != "" {
			textures[t] = struct{}{}
		}
		if p := strings.TrimSpace(item.Pattern); p != "" && !strings.EqualFold(p, "Solid") {
			patterned++
		}
	}

	if len(intensities) <= 2 {
		points += 10
		notes = append(notes, "Balanced color intensity")
	}
	if len(textures) >= 2 && len(textures) <= 3 {
		points += 8
		notes = append(notes, "Complementary textures")
	}
	if patterned <= 1 {
		points += 12
		notes = append(notes, "Patterns kept simple")
	}
	return points, notes
}

func weatherBonus(items []ClothingItem, wc weatherContext, _ *Preferences) (float64, []string) {
	if !wc.present || len(items) == 0 {
		return 0, nil
	}

	var points float64
	var notes []string

	var warmth float64
	protected := false
	breathable := 0
	for _, item := range items {
		warmth += item.Warmth.Score()
		if item.WaterResistance.Protective() {
			protected = true
		}
		if item.Breathability.breathable() {
			breathable++
		}
	}

	fit := 15 - 5*math.Abs(warmth/float64(len(items))-wc.target.Score())
	if fit > 0 {
		points += fit
		notes = append(notes, fmt.Sprintf("Warmth suited to %.0f°C", wc.temperature))
	}

	if wc.wet && protected {
		points += 15
		notes = append(notes, "Water-resistant pieces for wet weather")
	}

	if wc.warm && breathable > 0 {
		points += float64(5 * breathable)
		notes = append(notes, "Breathable fabrics for the heat")
	}
	return points, notes
}

func preferenceBonus(items []ClothingItem, _ weatherContext, prefs *Preferences) (float64, []string) {
	if prefs == nil {
		return 0, nil
	}

	var points float64
	var notes []string

	colorHits, categoryHits := 0, 0
	for _, item := range items {
		if matchesPreferredColor(item.Color, prefs.PreferredColors) {
			colorHits++
		}
		for _, category := range prefs.PreferredCategories {
			if item.Category == category {
				categoryHits++
				break
			}
		}
	}

	if colorHits > 0 {
		points += float64(8 * colorHits)
		notes = append(notes, "Features your preferred colors")
	}
	if categoryHits > 0 {
		points += float64(5 * categoryHits)
		notes = append(notes, "Includes your favorite kinds of pieces")
	}
	return points, notes
}

func matchesPreferredColor(color string, preferred []string) bool {
	color = strings.ToLower(color)
	for _, p := range preferred {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(color, p) {
			return true
		}
	}
	return false
}

func versatilityBonus(items []ClothingItem, _ weatherContext, _ *Preferences) (float64, []string) {
	if len(items) == 0 {
		return 0, nil
	}

	var sum float64
	for _, item := range items {
		if item.Versatility != nil {
			sum += float64(*item.Versatility)
		} else {
			sum += 5
		}
	}

	// half-up rounding, so -0.5 becomes 0 rather than -1
	points := math.Floor((sum/float64(len(items))-5)*2 + 0.5)
	switch {
	case points > 0:
		return points, []string{"Built from versatile pieces"}
	case points < 0:
		return points, []string{"Includes less versatile pieces"}
	}
	return 0, nil
}
