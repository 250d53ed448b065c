package models

import (
	"time"

	"wardrobeapi/outfits"
)

// ClothingAttributesIn holds the optional tagged attributes shared by create
// and update requests. Nil fields are left untouched.
type ClothingAttributesIn struct {
	Name                *string  `json:"name" validate:"omitempty,max=100"`
	Description         *string  `json:"description" validate:"omitempty,max=500"`
	Category            *string  `json:"category" validate:"omitempty,category"`
	Color               *string  `json:"color" validate:"omitempty,max=50"`
	WarmthLevel         *string  `json:"warmth_level" validate:"omitempty,warmth"`
	Tags                []string `json:"tags" validate:"omitempty,max=30,dive,max=50"`
	Brand               *string  `json:"brand" validate:"omitempty,max=100"`
	StyleAesthetic      []string `json:"style_aesthetic" validate:"omitempty,max=10,dive,max=50"`
	Occasions           []string `json:"occasion" validate:"omitempty,max=10,dive,max=50"`
	Season              []string `json:"season" validate:"omitempty,max=5,dive,max=20"`
	FormalityLevel      *string  `json:"formality_level" validate:"omitempty,formality"`
	MaterialFabric      *string  `json:"material_fabric" validate:"omitempty,max=100"`
	PatternDesign       *string  `json:"pattern_design" validate:"omitempty,max=50"`
	ColorIntensity      *string  `json:"color_intensity" validate:"omitempty,color_intensity"`
	Texture             *string  `json:"texture" validate:"omitempty,max=50"`
	WaterResistance     *string  `json:"water_resistance" validate:"omitempty,water_resistance"`
	LayeringPosition    *string  `json:"layering_position" validate:"omitempty,layering"`
	VersatilityScore    *int     `json:"versatility_score" validate:"omitempty,min=1,max=10"`
	ConditionStatus     *string  `json:"condition_status" validate:"omitempty,condition_status"`
	ComplimentFrequency *string  `json:"compliment_frequency" validate:"omitempty,compliment_frequency"`
	Breathability       *string  `json:"breathability" validate:"omitempty,breathability"`
}

// ApplyTo copies the present attributes onto the row in their canonical spelling.
func (in ClothingAttributesIn) ApplyTo(c *Clothing) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.Category != nil {
		c.Category = CanonicalCategory(*in.Category)
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	if in.WarmthLevel != nil {
		c.WarmthLevel = CanonicalWarmth(*in.WarmthLevel)
	}
	if in.Tags != nil {
		c.Tags = in.Tags
	}
	if in.Brand != nil {
		c.Brand = in.Brand
	}
	if in.StyleAesthetic != nil {
		c.StyleAesthetic = in.StyleAesthetic
	}
	if in.Occasions != nil {
		c.Occasions = in.Occasions
	}
	if in.Season != nil {
		c.Season = in.Season
	}
	if in.FormalityLevel != nil {
		c.FormalityLevel = CanonicalFormality(in.FormalityLevel)
	}
	if in.MaterialFabric != nil {
		c.MaterialFabric = in.MaterialFabric
	}
	if in.PatternDesign != nil {
		c.PatternDesign = in.PatternDesign
	}
	if in.ColorIntensity != nil {
		c.ColorIntensity = CanonicalColorIntensity(in.ColorIntensity)
	}
	if in.Texture != nil {
		c.Texture = in.Texture
	}
	if in.WaterResistance != nil {
		c.WaterResistance = CanonicalWaterResistance(in.WaterResistance)
	}
	if in.LayeringPosition != nil {
		c.LayeringPosition = CanonicalLayering(in.LayeringPosition)
	}
	if in.VersatilityScore != nil {
		c.VersatilityScore = in.VersatilityScore
	}
	if in.ConditionStatus != nil {
		c.ConditionStatus = CanonicalCondition(in.ConditionStatus)
	}
	if in.ComplimentFrequency != nil {
		c.ComplimentFrequency = CanonicalCompliments(in.ComplimentFrequency)
	}
	if in.Breathability != nil {
		c.Breathability = CanonicalBreathability(in.Breathability)
	}
}

type CreateClothingIn struct {
	ClothingAttributesIn
	FileName *string `json:"file_name" validate:"omitempty,max=200"`
	// Analyze runs AI attribute extraction on the uploaded photo.
	Analyze *bool `json:"analyze"`
}

type ClothingOut struct {
	ID                  uint     `json:"id"`
	Name                string   `json:"name"`
	Description         *string  `json:"description"`
	Category            string   `json:"category"`
	Color               string   `json:"color"`
	WarmthLevel         string   `json:"warmth_level"`
	Tags                []string `json:"tags"`
	Brand               *string  `json:"brand"`
	StyleAesthetic      []string `json:"style_aesthetic"`
	Occasions           []string `json:"occasion"`
	Season              []string `json:"season"`
	FormalityLevel      *string  `json:"formality_level"`
	MaterialFabric      *string  `json:"material_fabric"`
	PatternDesign       *string  `json:"pattern_design"`
	ColorIntensity      *string  `json:"color_intensity"`
	Texture             *string  `json:"texture"`
	WaterResistance     *string  `json:"water_resistance"`
	LayeringPosition    *string  `json:"layering_position"`
	VersatilityScore    *int     `json:"versatility_score"`
	ConditionStatus     *string  `json:"condition_status"`
	ComplimentFrequency *string  `json:"compliment_frequency"`
	Breathability       *string  `json:"breathability"`
	AIAnalyzed          bool     `json:"ai_analyzed"`
	AIConfidence        *float64 `json:"ai_confidence"`
	ProcessingStatus    string   `json:"processing_status"`
	Uri                 *string  `json:"uri,omitempty"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

func NewClothingOut(c Clothing) ClothingOut {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return ClothingOut{
		ID:                  c.ID,
		Name:                c.DisplayName(),
		Description:         c.Description,
		Category:            c.Category,
		Color:               c.Color,
		WarmthLevel:         c.WarmthLevel,
		Tags:                orEmpty(c.Tags),
		Brand:               c.Brand,
		StyleAesthetic:      orEmpty(c.StyleAesthetic),
		Occasions:           orEmpty(c.Occasions),
		Season:              orEmpty(c.Season),
		FormalityLevel:      c.FormalityLevel,
		MaterialFabric:      c.MaterialFabric,
		PatternDesign:       c.PatternDesign,
		ColorIntensity:      c.ColorIntensity,
		Texture:             c.Texture,
		WaterResistance:     c.WaterResistance,
		LayeringPosition:    c.LayeringPosition,
		VersatilityScore:    c.VersatilityScore,
		ConditionStatus:     c.ConditionStatus,
		ComplimentFrequency: c.ComplimentFrequency,
		Breathability:       c.Breathability,
		AIAnalyzed:          c.AIAnalyzed,
		AIConfidence:        c.AIConfidence,
		ProcessingStatus:    c.ProcessingStatus,
		CreatedAt:           c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           c.UpdatedAt.Format(time.RFC3339),
	}
}

type ClothingCreatedOut struct {
	Clothing      ClothingOut `json:"clothes"`
	FileUploadUrl *string     `json:"file_upload_url"`
}

type ClothesListOut struct {
	Tops        []ClothingOut `json:"tops"`
	Bottoms     []ClothingOut `json:"bottoms"`
	Dresses     []ClothingOut `json:"dresses"`
	Jackets     []ClothingOut `json:"jackets"`
	Outerwear   []ClothingOut `json:"outerwear"`
	Shoes       []ClothingOut `json:"shoes"`
	Accessories []ClothingOut `json:"accessories"`
	Other       []ClothingOut `json:"other"`
}

type WeatherIn struct {
	Temperature *float64 `json:"temperature" validate:"required,min=-90,max=60"`
	Condition   string   `json:"condition" validate:"required,max=50"`
	Humidity    float64  `json:"humidity"`
	WindSpeed   float64  `json:"wind_speed"`
	City        string   `json:"city" validate:"max=100"`
}

func (w *WeatherIn) Snapshot() *outfits.WeatherSnapshot {
	if w == nil || w.Temperature == nil {
		return nil
	}
	return &outfits.WeatherSnapshot{
		Temperature: *w.Temperature,
		Condition:   w.Condition,
		Humidity:    w.Humidity,
		WindSpeed:   w.WindSpeed,
		City:        w.City,
	}
}

type SuggestOutfitsIn struct {
	Weather *WeatherIn `json:"weather" validate:"omitempty"`
	// City is looked up when no weather is given. Falls back to the stored preference.
	City           *string `json:"city" validate:"omitempty,max=100"`
	UsePreferences *bool   `json:"use_preferences"`
}

type SuggestionOut struct {
	Name      string        `json:"name"`
	ItemIDs   []uint        `json:"item_ids"`
	Items     []ClothingOut `json:"items"`
	Score     float64       `json:"score"`
	Reasoning string        `json:"reasoning"`
}

type SuggestOutfitsOut struct {
	Suggestions []SuggestionOut          `json:"suggestions"`
	Weather     *outfits.WeatherSnapshot `json:"weather"`
}

type SaveOutfitIn struct {
	Name             string   `json:"name" validate:"omitempty,max=100"`
	ClothingIDs      []uint   `json:"clothing_item_ids" validate:"required,min=2,max=10"`
	WeatherCondition *string  `json:"weather_condition" validate:"omitempty,max=50"`
	Temperature      *float64 `json:"temperature"`
	Occasion         *string  `json:"occasion" validate:"omitempty,max=100"`
	Reasoning        *string  `json:"reasoning" validate:"omitempty,max=2000"`
	StyleNotes       *string  `json:"style_notes" validate:"omitempty,max=2000"`
	Score            *float64 `json:"score"`
	Source           string   `json:"source" validate:"omitempty,oneof=engine ai"`
}

type OutfitOut struct {
	ID               uint          `json:"id"`
	Name             string        `json:"name"`
	ClothingIDs      []int64       `json:"clothing_item_ids"`
	Items            []ClothingOut `json:"items"`
	Incomplete       bool          `json:"incomplete"`
	WeatherCondition *string       `json:"weather_condition"`
	Temperature      *float64      `json:"temperature"`
	Occasion         *string       `json:"occasion"`
	Reasoning        *string       `json:"reasoning"`
	StyleNotes       *string       `json:"style_notes"`
	Score            *float64      `json:"score"`
	Source           string        `json:"source"`
	Rating           *int          `json:"rating"`
	IsFavorite       bool          `json:"is_favorite"`
	CreatedAt        string        `json:"created_at"`
}

type RateOutfitIn struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type FavoriteOutfitIn struct {
	IsFavorite *bool `json:"is_favorite" validate:"required"`
}

type AIPreferencesIn struct {
	Style        *string `json:"style" validate:"omitempty,max=100"`
	Colors       *string `json:"colors" validate:"omitempty,max=100"`
	ComfortLevel *string `json:"comfort_level" validate:"omitempty,max=50"`
}

type AIOutfitRequestIn struct {
	Occasion        string           `json:"occasion" validate:"required,max=100"`
	Weather         *WeatherIn       `json:"weather" validate:"omitempty"`
	Preferences     *AIPreferencesIn `json:"preferences" validate:"omitempty"`
	AdditionalNotes *string          `json:"additional_notes" validate:"omitempty,max=500"`
}

// GeneratedOutfit is one outfit proposed by the AI stylist (or by the engine
// when the stylist answer was unusable).
type GeneratedOutfit struct {
	Name       string  `json:"name"`
	ItemIDs    []uint  `json:"item_ids"`
	Reasoning  string  `json:"reasoning"`
	StyleNotes string  `json:"style_notes"`
	Confidence float64 `json:"confidence"`
}

type OutfitGenerationOut struct {
	ID           uint              `json:"id"`
	Status       string            `json:"status"`
	Occasion     string            `json:"occasion"`
	Outfits      []GeneratedOutfit `json:"outfits"`
	GeneralTips  *string           `json:"general_tips"`
	UsedFallback bool              `json:"used_fallback"`
	Error        *string           `json:"error,omitempty"`
	LLMModel     *string           `json:"llm_model,omitempty"`
	TokenUsage   *int32            `json:"token_usage,omitempty"`
}

type PreferencesIn struct {
	PreferredColors     []string `json:"preferred_colors" validate:"omitempty,max=20,dive,max=30"`
	PreferredCategories []string `json:"preferred_categories" validate:"omitempty,max=7,dive,category"`
	StylePreferences    []string `json:"style_preferences" validate:"omitempty,max=20,dive,max=50"`
	City                *string  `json:"city" validate:"omitempty,max=100"`
	DailySuggestions    *bool    `json:"daily_suggestions"`
}

type PreferencesOut struct {
	PreferredColors     []string `json:"preferred_colors"`
	PreferredCategories []string `json:"preferred_categories"`
	StylePreferences    []string `json:"style_preferences"`
	City                *string  `json:"city"`
	DailySuggestions    bool     `json:"daily_suggestions"`
}

func NewPreferencesOut(p UserPreferences) PreferencesOut {
	out := PreferencesOut{
		PreferredColors:     []string(p.PreferredColors),
		PreferredCategories: []string(p.PreferredCategories),
		StylePreferences:    []string(p.StylePreferences),
		City:                p.City,
		DailySuggestions:    p.DailySuggestions,
	}
	for _, s := range []*[]string{&out.PreferredColors, &out.PreferredCategories, &out.StylePreferences} {
		if *s == nil {
			*s = []string{}
		}
	}
	return out
}

// EnginePreferences converts stored preferences for scoring. Unknown
// categories are skipped.
func (p UserPreferences) EnginePreferences() *outfits.Preferences {
	prefs := &outfits.Preferences{PreferredColors: []string(p.PreferredColors)}
	for _, raw := range p.PreferredCategories {
		if category := outfits.ParseCategory(raw); category.Valid() {
			prefs.PreferredCategories = append(prefs.PreferredCategories, category)
		}
	}
	return prefs
}
