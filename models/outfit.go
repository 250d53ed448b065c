package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	OutfitSourceEngine = "engine"
	OutfitSourceAI     = "ai"

	GenerationPending   = "pending"
	GenerationCompleted = "completed"
	GenerationFailed    = "failed"
)

// Outfit is a saved combination. ClothingIDs may point at deleted items.
type Outfit struct {
	JsonModel
	Name             string        `json:"name"`
	OwnerID          uint          `gorm:"index" json:"-"`
	Owner            UserAccount   `json:"-"`
	CompanyID        uint          `json:"-"`
	ClothingIDs      pq.Int64Array `gorm:"type:bigint[]" json:"clothing_item_ids"`
	WeatherCondition *string       `json:"weather_condition"`
	Temperature      *float64      `json:"temperature"`
	Occasion         *string       `json:"occasion"`
	Reasoning        *string       `gorm:"type:text" json:"reasoning"`
	StyleNotes       *string       `gorm:"type:text" json:"style_notes"`
	Score            *float64      `json:"score"`
	Source           string        `gorm:"default:engine" json:"source"`
	Rating           *int          `json:"rating"`
	IsFavorite       bool          `gorm:"default:false" json:"is_favorite"`
	WornAt           *time.Time    `json:"worn_at"`
}

type UserPreferences struct {
	JsonModel
	UserAccountID       uint           `gorm:"uniqueIndex" json:"-"`
	UserAccount         UserAccount    `json:"-"`
	PreferredColors     pq.StringArray `gorm:"type:text[]" json:"preferred_colors"`
	PreferredCategories pq.StringArray `gorm:"type:text[]" json:"preferred_categories"`
	StylePreferences    pq.StringArray `gorm:"type:text[]" json:"style_preferences"`
	City                *string        `json:"city"`
	DailySuggestions    bool           `gorm:"default:false" json:"daily_suggestions"`
}

// OutfitGeneration is one asynchronous AI stylist request.
type OutfitGeneration struct {
	JsonModel
	UserAccountID   uint        `json:"-"`
	UserAccount     UserAccount `json:"-"`
	CompanyID       uint        `json:"-"`
	Occasion        string      `json:"occasion"`
	AdditionalNotes *string     `gorm:"type:text" json:"additional_notes"`
	Temperature     *float64    `json:"temperature"`
	Condition       *string     `json:"condition"`
	City            *string     `json:"city"`
	Style           *string     `json:"style"`
	Colors          *string     `json:"colors"`
	ComfortLevel    *string     `json:"comfort_level"`
	Status          string      `json:"status"` // pending, completed, failed
	Result          *string     `gorm:"type:text" json:"-"`
	GeneralTips     *string     `gorm:"type:text" json:"general_tips"`
	UsedFallback    bool        `gorm:"default:false" json:"used_fallback"`

	Duration               *float64 `json:"duration"`
	LLMModel               *string  `json:"llm_model"`
	LLMInputTokenCount     *int32   `json:"llm_input_token_usage"`
	LLMOutputTokenCount    *int32   `json:"llm_output_token_usage"`
	LLMTotalTokenCount     *int32   `json:"llm_total_token_usage"`
	LLMThoughtsTokenCount  *int32   `json:"llm_thoughts_token_count"`
	GenerationRetryTimes   int      `json:"generation_retry_times"`
	GenerationErrorMessage *string  `json:"generation_error_message"`
}
