package outfits

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, category Category, color string, warmth WarmthLevel) ClothingItem {
	return ClothingItem{ID: id, Category: category, Color: color, Warmth: warmth, Tags: []string{}}
}

func intPtr(i int) *int {
	return &i
}

func findSuggestion(t *testing.T, suggestions []Suggestion, ids ...string) Suggestion {
	t.Helper()
	for _, s := range suggestions {
		if assert.ObjectsAreEqual(ids, s.ItemIDs()) {
			return s
		}
	}
	t.Fatalf("no suggestion with items %v", ids)
	return Suggestion{}
}

func TestRankOutfitsBasicOutfitWithFootwear(t *testing.T) {
	items := []ClothingItem{
		item("top", CategoryTop, "Blue", WarmthMedium),
		item("bottom", CategoryBottom, "Black", WarmthMedium),
		item("shoes", CategoryShoes, "Black", WarmthUnspecified),
	}

	suggestions := RankOutfits(items, &WeatherSnapshot{Temperature: 20, Condition: "Clear"}, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, []string{"top", "bottom", "shoes"}, suggestions[0].ItemIDs())
	assert.GreaterOrEqual(t, suggestions[0].Score, 100.0)
	// 100 + footwear 15 + intensity 10 + pattern 12 + warmth fit 15-5*(5/3-1)
	assert.InDelta(t, 148.667, suggestions[0].Score, 0.01)
	assert.Contains(t, suggestions[0].Reasoning, "Coordinated outfit with Blue top and Black bottom")
	assert.Contains(t, suggestions[0].Reasoning, "Completed with appropriate footwear")
	assert.Contains(t, suggestions[0].Reasoning, "Colors complement each other")
}

func TestRankOutfitsSnowAddsOuterwear(t *testing.T) {
	coat := item("coat", CategoryOuterwear, "Gray", WarmthHeavy)
	coat.WaterResistance = WaterResistanceWaterproof
	items := []ClothingItem{
		item("top", CategoryTop, "Blue", WarmthMedium),
		item("bottom", CategoryBottom, "Black", WarmthMedium),
		item("shoes", CategoryShoes, "Black", WarmthUnspecified),
		coat,
	}

	suggestions := RankOutfits(items, &WeatherSnapshot{Temperature: 2, Condition: "Snow"}, nil)

	require.NotEmpty(t, suggestions)
	assert.Contains(t, suggestions[0].ItemIDs(), "coat")
	assert.Contains(t, suggestions[0].Reasoning, "weather protection")
	assert.Contains(t, suggestions[0].Reasoning, "Water-resistant pieces for wet weather")
}

func TestRankOutfitsFormalDressWithCasualShoesYieldsNothing(t *testing.T) {
	dress := item("dress", CategoryDress, "Red", WarmthLight)
	dress.Formality = FormalityFormal
	shoes := item("shoes", CategoryShoes, "White", WarmthLight)
	shoes.Formality = FormalityVeryCasual

	assert.False(t, FormalityCompatible(dress, shoes))
	assert.Empty(t, RankOutfits([]ClothingItem{dress, shoes}, nil, nil))
}

func TestRankOutfitsPreferredColorScoresHigher(t *testing.T) {
	items := []ClothingItem{
		item("red-top", CategoryTop, "Bright Red", WarmthMedium),
		item("blue-top", CategoryTop, "Blue", WarmthMedium),
		item("bottom", CategoryBottom, "Black", WarmthMedium),
	}
	prefs := &Preferences{PreferredColors: []string{"red"}}

	suggestions := RankOutfits(items, nil, prefs)

	red := findSuggestion(t, suggestions, "red-top", "bottom")
	blue := findSuggestion(t, suggestions, "blue-top", "bottom")
	assert.Greater(t, red.Score, blue.Score)
	assert.Equal(t, 8.0, red.Score-blue.Score)
	assert.Equal(t, "red-top", suggestions[0].Items[0].ID)
	assert.Contains(t, red.Reasoning, "Features your preferred colors")
}

func TestRankOutfitsDeterministic(t *testing.T) {
	items := sampleWardrobe()
	weather := &WeatherSnapshot{Temperature: 8, Condition: "Light rain"}
	prefs := &Preferences{PreferredColors: []string{"green"}, PreferredCategories: []Category{CategoryJacket}}

	first := RankOutfits(items, weather, prefs)
	second := RankOutfits(items, weather, prefs)

	assert.Equal(t, first, second)
}

func TestRankOutfitsBoundedAndSorted(t *testing.T) {
	var items []ClothingItem
	for i := 0; i < 5; i++ {
		items = append(items,
			item(fmt.Sprintf("top-%d", i), CategoryTop, "White", WarmthLight),
			item(fmt.Sprintf("bottom-%d", i), CategoryBottom, "Navy", WarmthMedium),
		)
	}
	for i := 0; i < 3; i++ {
		items = append(items, item(fmt.Sprintf("dress-%d", i), CategoryDress, "Green", WarmthLight))
	}
	items = append(items, item("shoes", CategoryShoes, "Brown", WarmthLight))

	result := NewEngine().Evaluate(items, nil, nil)

	// 2 dresses + 3 tops x 2 bottoms
	assert.Equal(t, 8, result.Candidates)
	require.Len(t, result.Suggestions, DefaultMaxSuggestions)
	for i := 1; i < len(result.Suggestions); i++ {
		assert.GreaterOrEqual(t, result.Suggestions[i-1].Score, result.Suggestions[i].Score)
	}
	for _, s := range result.Suggestions {
		assert.GreaterOrEqual(t, len(s.Items), 2)
		assert.NotEmpty(t, s.Reasoning)
	}
}

func TestRankOutfitsFewerCombinationsThanLimit(t *testing.T) {
	items := []ClothingItem{
		item("top", CategoryTop, "White", WarmthLight),
		item("bottom-1", CategoryBottom, "Navy", WarmthLight),
		item("bottom-2", CategoryBottom, "Beige", WarmthLight),
	}

	assert.Len(t, RankOutfits(items, nil, nil), 2)
}

func TestRankOutfitsScoreNeverNegative(t *testing.T) {
	top := item("top", CategoryTop, "Purple", WarmthHeavy)
	top.StyleAesthetic = []string{"Goth"}
	top.Formality = FormalityVeryCasual
	top.Pattern = "Floral"
	top.ColorIntensity = ColorIntensityPastel
	top.Versatility = intPtr(-100)

	bottom := item("bottom", CategoryBottom, "Orange", WarmthHeavy)
	bottom.StyleAesthetic = []string{"Preppy"}
	bottom.Formality = FormalityBlackTie
	bottom.Pattern = "Striped"
	bottom.ColorIntensity = ColorIntensityVibrant
	bottom.Versatility = intPtr(-100)

	shoes := item("shoes", CategoryShoes, "Teal", WarmthHeavy)
	shoes.Formality = FormalitySmartCasual
	shoes.Pattern = "Geometric"
	shoes.ColorIntensity = ColorIntensityDark
	shoes.Versatility = intPtr(-100)

	suggestions := RankOutfits([]ClothingItem{top, bottom, shoes}, &WeatherSnapshot{Temperature: 35, Condition: "Clear"}, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, 0.0, suggestions[0].Score)
	assert.Contains(t, suggestions[0].Reasoning, "Style mixing may require careful coordination")
	assert.Contains(t, suggestions[0].Reasoning, "Mixed formality levels")
}

func TestRankOutfitsEmptyInputs(t *testing.T) {
	weather := &WeatherSnapshot{Temperature: 12, Condition: "Clouds"}

	assert.Equal(t, []Suggestion{}, RankOutfits(nil, weather, nil))
	assert.Empty(t, RankOutfits([]ClothingItem{}, weather, &Preferences{}))

	accessories := []ClothingItem{
		item("hat", CategoryAccessory, "Black", WarmthLight),
		item("scarf", CategoryAccessory, "Red", WarmthMedium),
	}
	assert.Empty(t, RankOutfits(accessories, weather, nil))

	unknown := []ClothingItem{
		{ID: "x", Category: ParseCategory("cape"), Color: "Blue", Warmth: WarmthLight},
		{ID: "y", Category: Category(42), Color: "Blue", Warmth: WarmthLight},
	}
	assert.Empty(t, RankOutfits(unknown, weather, nil))
}

func TestRankOutfitsToleratesMissingAttributes(t *testing.T) {
	items := []ClothingItem{
		{ID: "top", Category: CategoryTop, Color: "Olive", Warmth: WarmthLight, Tags: []string{}},
		{ID: "bottom", Category: CategoryBottom, Warmth: WarmthMedium},
		{ID: "odd", Category: CategoryShoes, Color: "Tan", Warmth: ParseWarmthLevel("scorching")},
	}

	for _, weather := range []*WeatherSnapshot{nil, {Temperature: -5, Condition: "Heavy snow"}, {Temperature: 31, Condition: "rain"}} {
		suggestions := RankOutfits(items, weather, &Preferences{PreferredColors: []string{""}})
		require.Len(t, suggestions, 1)
		assert.Equal(t, []string{"top", "bottom", "odd"}, suggestions[0].ItemIDs())
		assert.GreaterOrEqual(t, suggestions[0].Score, 0.0)
	}
}

func TestRankOutfitsWithoutWeatherSkipsOuterwear(t *testing.T) {
	items := []ClothingItem{
		item("top", CategoryTop, "White", WarmthLight),
		item("bottom", CategoryBottom, "Black", WarmthLight),
		item("jacket", CategoryJacket, "Navy", WarmthMedium),
	}

	suggestions := RankOutfits(items, nil, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, []string{"top", "bottom"}, suggestions[0].ItemIDs())
	assert.NotContains(t, suggestions[0].Reasoning, "Warmth suited")
}

func TestRankOutfitsDressInRainNeedsProtectedLayer(t *testing.T) {
	dress := item("dress", CategoryDress, "Yellow", WarmthLight)
	dress.StyleAesthetic = []string{"Romantic"}
	shoes := item("shoes", CategoryShoes, "White", WarmthLight)
	shoes.StyleAesthetic = []string{"Edgy"}
	flats := item("flats", CategoryShoes, "Beige", WarmthLight)
	flats.StyleAesthetic = []string{"romantic"}
	denim := item("denim", CategoryJacket, "Blue", WarmthMedium)
	trench := item("trench", CategoryOuterwear, "Beige", WarmthMedium)
	trench.WaterResistance = WaterResistanceResistant

	suggestions := RankOutfits([]ClothingItem{dress, shoes, flats, denim, trench}, &WeatherSnapshot{Temperature: 16, Condition: "Rain"}, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, []string{"dress", "flats", "trench"}, suggestions[0].ItemIDs())
	assert.Contains(t, suggestions[0].Reasoning, "Elegant dress-based outfit featuring a Yellow dress")
	assert.Contains(t, suggestions[0].Reasoning, "Paired with complementary footwear")
	assert.Contains(t, suggestions[0].Reasoning, "Added weather-appropriate outerwear")
}

func TestRankOutfitsLayeringBlocksStatementTop(t *testing.T) {
	top := item("top", CategoryTop, "Red", WarmthMedium)
	top.Layering = LayeringStatement
	bottom := item("bottom", CategoryBottom, "Black", WarmthMedium)
	jacket := item("jacket", CategoryJacket, "Black", WarmthHeavy)

	suggestions := RankOutfits([]ClothingItem{top, bottom, jacket}, &WeatherSnapshot{Temperature: 3, Condition: "Clear"}, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, []string{"top", "bottom"}, suggestions[0].ItemIDs())
}

func TestEngineParallelMatchesSequential(t *testing.T) {
	items := sampleWardrobe()
	weather := &WeatherSnapshot{Temperature: 27, Condition: "Clear"}
	prefs := &Preferences{PreferredCategories: []Category{CategoryDress}}

	parallel := NewEngine()
	parallel.Parallel = true

	assert.Equal(t, NewEngine().Rank(items, weather, prefs), parallel.Rank(items, weather, prefs))
}

func TestEngineCustomCaps(t *testing.T) {
	items := sampleWardrobe()
	engine := &Engine{MaxSuggestions: -1, MaxDresses: -1, MaxTops: -1, MaxBottoms: -1}

	result := engine.Evaluate(items, nil, nil)

	// 2 dresses + 3 tops x 2 bottoms, nothing trimmed
	assert.Equal(t, 8, result.Candidates)
	assert.Len(t, result.Suggestions, 8)
}

func TestEngineZeroValueUsesDefaultCaps(t *testing.T) {
	items := sampleWardrobe()
	weather := &WeatherSnapshot{Temperature: 12, Condition: "Rain"}

	var engine Engine
	result := engine.Evaluate(items, weather, nil)

	assert.Equal(t, NewEngine().Evaluate(items, weather, nil), result)
	assert.Len(t, result.Suggestions, DefaultMaxSuggestions)
}

func TestRankOutfitsDrizzleSkipsProtectionBonus(t *testing.T) {
	shell := item("shell-top", CategoryTop, "Navy", WarmthMedium)
	shell.WaterResistance = WaterResistanceWaterproof
	items := []ClothingItem{shell, item("bottom", CategoryBottom, "Black", WarmthMedium)}

	score := func(condition string) Suggestion {
		suggestions := RankOutfits(items, &WeatherSnapshot{Temperature: 20, Condition: condition}, nil)
		require.Len(t, suggestions, 1)
		return suggestions[0]
	}
	clear, drizzle, rain := score("Clear"), score("Drizzle"), score("Light Rain")

	assert.InDelta(t, clear.Score, drizzle.Score, 1e-9)
	assert.NotContains(t, drizzle.Reasoning, "Water-resistant pieces for wet weather")
	assert.InDelta(t, clear.Score+15, rain.Score, 1e-9)
	assert.Contains(t, rain.Reasoning, "Water-resistant pieces for wet weather")
}

func sampleWardrobe() []ClothingItem {
	linen := item("linen-shirt", CategoryTop, "White", WarmthLight)
	linen.Breathability = BreathabilityVeryBreathable
	linen.Texture = "Smooth"
	linen.Versatility = intPtr(8)

	sweater := item("sweater", CategoryTop, "Green", WarmthHeavy)
	sweater.Texture = "Soft"
	sweater.Condition = ConditionExcellent

	tee := item("tee", CategoryTop, "Red", WarmthLight)
	tee.Pattern = "Striped"

	jeans := item("jeans", CategoryBottom, "Blue", WarmthMedium)
	jeans.Texture = "Rough"
	jeans.Compliments = ComplimentsOften

	chinos := item("chinos", CategoryBottom, "Beige", WarmthLight)
	chinos.Formality = FormalitySmartCasual

	sundress := item("sundress", CategoryDress, "Yellow", WarmthLight)
	sundress.Breathability = BreathabilityBreathable
	slip := item("slip-dress", CategoryDress, "Black", WarmthLight)
	slip.Formality = FormalityFormal

	sneakers := item("sneakers", CategoryShoes, "White", WarmthLight)
	loafers := item("loafers", CategoryShoes, "Brown", WarmthLight)
	loafers.Formality = FormalityBusinessCasual

	raincoat := item("raincoat", CategoryJacket, "Navy", WarmthMedium)
	raincoat.WaterResistance = WaterResistanceWaterproof

	return []ClothingItem{linen, sweater, tee, jeans, chinos, sundress, slip, sneakers, loafers, raincoat,
		item("belt", CategoryAccessory, "Brown", WarmthLight)}
}
