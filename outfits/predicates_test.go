package outfits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func styled(styles ...string) ClothingItem {
	return ClothingItem{Category: CategoryTop, StyleAesthetic: styles}
}

func TestStyleCompatible(t *testing.T) {
	cases := []struct {
		name string
		a, b ClothingItem
		want bool
	}{
		{"missing styles", styled(), styled("Goth"), true},
		{"shared style", styled("Classic", "Chic"), styled("chic"), true},
		{"pair table", styled("Classic"), styled("Minimalist"), true},
		{"pair table reversed", styled("Modern"), styled("Trendy"), true},
		{"casual streetwear", styled("Streetwear"), styled("Casual"), true},
		{"no overlap", styled("Goth"), styled("Preppy"), false},
		{"padded shared style", styled(" Goth"), styled("goth "), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StyleCompatible(tc.a, tc.b))
		})
	}
}

func TestFormalityCompatible(t *testing.T) {
	casual := ClothingItem{Formality: FormalityCasual}
	unknown := ClothingItem{}
	smart := ClothingItem{Formality: FormalitySmartCasual}
	business := ClothingItem{Formality: FormalityBusinessCasual}
	blackTie := ClothingItem{Formality: FormalityBlackTie}

	assert.True(t, FormalityCompatible(casual, smart))
	assert.True(t, FormalityCompatible(unknown, smart))
	assert.True(t, FormalityCompatible(unknown, ClothingItem{Formality: FormalityVeryCasual}))
	assert.False(t, FormalityCompatible(unknown, business))
	assert.False(t, FormalityCompatible(blackTie, smart))
	assert.True(t, FormalityCompatible(blackTie, ClothingItem{Formality: FormalityFormal}))
}

func TestWeatherAppropriate(t *testing.T) {
	light := ClothingItem{Category: CategoryTop, Warmth: WarmthLight}
	heavy := ClothingItem{Category: CategoryOuterwear, Warmth: WarmthHeavy}
	jacket := ClothingItem{Category: CategoryJacket, Warmth: WarmthMedium}
	shell := ClothingItem{Category: CategoryJacket, Warmth: WarmthMedium, WaterResistance: WaterResistanceRepellent}

	assert.True(t, WeatherAppropriate(light, nil))
	assert.False(t, WeatherAppropriate(light, &WeatherSnapshot{Temperature: 4}))
	assert.True(t, WeatherAppropriate(light, &WeatherSnapshot{Temperature: 5}))
	assert.False(t, WeatherAppropriate(heavy, &WeatherSnapshot{Temperature: 26}))
	assert.True(t, WeatherAppropriate(heavy, &WeatherSnapshot{Temperature: 25}))

	rain := &WeatherSnapshot{Temperature: 12, Condition: "Heavy Rain"}
	assert.False(t, WeatherAppropriate(jacket, rain))
	assert.True(t, WeatherAppropriate(shell, rain))
	assert.True(t, WeatherAppropriate(light, rain))
	assert.True(t, WeatherAppropriate(jacket, &WeatherSnapshot{Temperature: 12, Condition: "Drizzle"}))
}

func TestLayeringCompatible(t *testing.T) {
	defaults := ClothingItem{}
	base := ClothingItem{Layering: LayeringBase}
	outer := ClothingItem{Layering: LayeringOuter}
	statement := ClothingItem{Layering: LayeringStatement}

	assert.True(t, LayeringCompatible(defaults, defaults))
	assert.True(t, LayeringCompatible(defaults, base))
	assert.False(t, LayeringCompatible(defaults, outer))
	assert.False(t, LayeringCompatible(defaults, statement))
	assert.True(t, LayeringCompatible(statement, outer))
	assert.False(t, LayeringCompatible(base, defaults))
}

func TestColorsMatch(t *testing.T) {
	cases := []struct {
		c1, c2 string
		want   bool
	}{
		{"Blue", "Black", true},
		{"Navy", "Orange", true},
		{"teal", "TEAL", true},
		{"Dark Blue", "Off White", true},
		{"yellow", "Sky Blue", true},
		{"Forest Green", "Brown", true},
		{"purple", "grey", true},
		{"Red", "Green", false},
		{"Orange", "Purple", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ColorsMatch(tc.c1, tc.c2), "%s/%s", tc.c1, tc.c2)
	}
}

func TestClassify(t *testing.T) {
	plain := ClothingItem{ID: "plain", Category: CategoryTop}
	versatile := ClothingItem{ID: "versatile", Category: CategoryTop, Versatility: intPtr(9)}
	loved := ClothingItem{ID: "loved", Category: CategoryTop, Condition: ConditionGood, Compliments: ComplimentsAlways}
	twin := ClothingItem{ID: "twin", Category: CategoryTop}
	skirt := ClothingItem{ID: "skirt", Category: CategoryBottom}
	cape := ClothingItem{ID: "cape", Category: ParseCategory("cape")}

	groups := Classify([]ClothingItem{plain, versatile, loved, twin, skirt, cape})

	assert.Len(t, groups, 2)
	var tops []string
	for _, i := range groups[CategoryTop] {
		tops = append(tops, i.ID)
	}
	assert.Equal(t, []string{"versatile", "loved", "plain", "twin"}, tops)
	assert.Len(t, groups[CategoryBottom], 1)

	assert.Empty(t, Classify(nil))
}

func TestDesirability(t *testing.T) {
	assert.Equal(t, 50, Desirability(ClothingItem{}))
	assert.Equal(t, 50+35+15+20, Desirability(ClothingItem{
		Versatility: intPtr(7),
		Condition:   ConditionExcellent,
		Compliments: ComplimentsAlways,
	}))
	assert.Equal(t, 55, Desirability(ClothingItem{Condition: ConditionFair, Compliments: ComplimentsRarely}))
	assert.Equal(t, 50, Desirability(ClothingItem{Condition: ConditionNeedsRepair, Compliments: ComplimentsNever}))
}

func TestParseAttributes(t *testing.T) {
	assert.Equal(t, CategoryOuterwear, ParseCategory(" Outerwear "))
	assert.Equal(t, CategoryUnspecified, ParseCategory("cape"))
	assert.Equal(t, WarmthHeavy, ParseWarmthLevel("HEAVY"))
	assert.Equal(t, FormalitySmartCasual, ParseFormalityLevel("smart_casual"))
	assert.Equal(t, FormalityBlackTie, ParseFormalityLevel("black-tie"))
	assert.Equal(t, LayeringStatement, ParseLayeringPosition("statement piece"))
	assert.Equal(t, WaterResistanceRepellent, ParseWaterResistance("Water Repellent"))
	assert.Equal(t, WaterResistanceNone, ParseWaterResistance("none"))
	assert.Equal(t, ConditionNeedsRepair, ParseConditionStatus("needs repair"))
	assert.Equal(t, BreathabilityNotBreathable, ParseBreathability("Not Breathable"))
	assert.Equal(t, ComplimentsOften, ParseComplimentFrequency("often"))
	assert.Equal(t, ColorIntensityVibrant, ParseColorIntensity("vibrant"))

	assert.Equal(t, "Business Casual", FormalityBusinessCasual.String())
	assert.Equal(t, "", FormalityLevel(99).String())
	assert.False(t, WaterResistanceNone.Protective())
	assert.False(t, WaterResistanceUnspecified.Protective())
	assert.True(t, WaterResistanceWaterproof.Protective())
	assert.Equal(t, 1.0, WarmthUnspecified.Score())
}
