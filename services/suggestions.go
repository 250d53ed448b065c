package services

import (
	"strconv"
	"time"

	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/outfits"

	"gorm.io/gorm"
)

// LoadWardrobe returns the owner's clothes in creation order.
func LoadWardrobe(db *gorm.DB, ownerID uint) ([]models.Clothing, error) {
	var clothes []models.Clothing
	err := db.Where("owner_id = ?", ownerID).Order("id asc").Find(&clothes).Error
	return clothes, err
}

// LoadPreferences returns nil when the user never saved preferences.
func LoadPreferences(db *gorm.DB, userID uint) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	res := db.Where("user_account_id = ?", userID).Limit(1).Find(&prefs)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &prefs, nil
}

// RankWardrobe runs the outfit engine over stored clothes.
func RankWardrobe(clothes []models.Clothing, weather *outfits.WeatherSnapshot, prefs *models.UserPreferences) []outfits.Suggestion {
	items := make([]outfits.ClothingItem, 0, len(clothes))
	for _, c := range clothes {
		items = append(items, c.ToWardrobeItem())
	}
	var enginePrefs *outfits.Preferences
	if prefs != nil {
		enginePrefs = prefs.EnginePreferences()
	}

	start := time.Now()
	result := outfits.NewEngine().Evaluate(items, weather, enginePrefs)
	metrics.EngineDuration.Observe(time.Since(start).Seconds())
	metrics.EngineCandidates.Observe(float64(result.Candidates))
	return result.Suggestions
}

// SuggestionClothingIDs converts engine item ids back to row ids.
func SuggestionClothingIDs(s outfits.Suggestion) []uint {
	ids := make([]uint, 0, len(s.Items))
	for _, raw := range s.ItemIDs() {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
