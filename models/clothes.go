package models

import (
	"strconv"
	"strings"

	"wardrobeapi/outfits"

	"github.com/lib/pq"
)

const (
	ProcessingIdle      = "idle"
	ProcessingPending   = "pending"
	ProcessingCompleted = "completed"
	ProcessingFailed    = "failed"
)

// MaxProcessRetries is how many failed attempts mark a row as failed.
const MaxProcessRetries = 3

type Clothing struct {
	JsonModel
	Name        string      `json:"name"`
	Description *string     `gorm:"type:text" json:"description"`
	Category    string      `gorm:"index" json:"category"` // top, bottom, dress, jacket, outerwear, shoes, accessory
	Owner       UserAccount `json:"-"`
	OwnerID     uint        `gorm:"index" json:"-"`
	CompanyID   uint        `json:"-"`
	Company     Company     `json:"-"`
	ImageStatus string      `json:"image_status"` // draft, uploaded
	ImageURL    *string     `json:"image_url"`

	Color          string         `json:"color"`
	WarmthLevel    string         `json:"warmth_level"` // light, medium, heavy
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags"`
	Brand          *string        `json:"brand"`
	StyleAesthetic pq.StringArray `gorm:"type:text[]" json:"style_aesthetic"`
	Occasions      pq.StringArray `gorm:"type:text[]" json:"occasion"`
	Season         pq.StringArray `gorm:"type:text[]" json:"season"`

	FormalityLevel      *string `json:"formality_level"`
	MaterialFabric      *string `json:"material_fabric"`
	PatternDesign       *string `json:"pattern_design"`
	ColorIntensity      *string `json:"color_intensity"`
	Texture             *string `json:"texture"`
	WaterResistance     *string `json:"water_resistance"`
	LayeringPosition    *string `json:"layering_position"`
	VersatilityScore    *int    `json:"versatility_score"`
	ConditionStatus     *string `json:"condition_status"`
	ComplimentFrequency *string `json:"compliment_frequency"`
	Breathability       *string `json:"breathability"`

	AIAnalyzed   bool     `gorm:"default:false" json:"ai_analyzed"`
	AIConfidence *float64 `json:"ai_confidence"`

	ProcessingStatus    string  `gorm:"default:idle" json:"processing_status"` // idle, pending, completed, failed
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
	LLMModel            *string `json:"-"`
	LLMInputTokenCount  *int32  `json:"-"`
	LLMOutputTokenCount *int32  `json:"-"`
	LLMTotalTokenCount  *int32  `json:"-"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToWardrobeItem converts the stored row into the engine's item shape.
// Unknown attribute text becomes the unspecified value.
func (c Clothing) ToWardrobeItem() outfits.ClothingItem {
	item := outfits.ClothingItem{
		ID:              strconv.FormatUint(uint64(c.ID), 10),
		OwnerID:         strconv.FormatUint(uint64(c.OwnerID), 10),
		Category:        outfits.ParseCategory(c.Category),
		Color:           c.Color,
		Warmth:          outfits.ParseWarmthLevel(c.WarmthLevel),
		Tags:            []string(c.Tags),
		StyleAesthetic:  []string(c.StyleAesthetic),
		Formality:       outfits.ParseFormalityLevel(deref(c.FormalityLevel)),
		Material:        deref(c.MaterialFabric),
		Season:          []string(c.Season),
		Pattern:         deref(c.PatternDesign),
		ColorIntensity:  outfits.ParseColorIntensity(deref(c.ColorIntensity)),
		Texture:         deref(c.Texture),
		WaterResistance: outfits.ParseWaterResistance(deref(c.WaterResistance)),
		Layering:        outfits.ParseLayeringPosition(deref(c.LayeringPosition)),
		Condition:       outfits.ParseConditionStatus(deref(c.ConditionStatus)),
		Compliments:     outfits.ParseComplimentFrequency(deref(c.ComplimentFrequency)),
		Breathability:   outfits.ParseBreathability(deref(c.Breathability)),
	}
	if c.VersatilityScore != nil {
		v := *c.VersatilityScore
		item.Versatility = &v
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item
}

// DisplayName falls back to "<color> <category>" for unnamed items.
func (c Clothing) DisplayName() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return strings.TrimSpace(c.Color + " " + c.Category)
}
