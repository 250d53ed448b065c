package controllers

import (
	"net/http"
	"strings"

	"wardrobeapi/models"
	"wardrobeapi/services"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type PreferencesController struct{}

func (controller *PreferencesController) PreferencesRoutes(g *echo.Group) {
	g.GET("", controller.GetPreferences)
	g.PUT("", controller.UpdatePreferences)
}

func (controller *PreferencesController) GetPreferences(c echo.Context) error {
	db := c.Get("__db").(*gorm.DB)
	prefs, err := services.LoadPreferences(db, currentUser(c).ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch preferences"})
	}
	if prefs == nil {
		return c.JSON(http.StatusOK, models.NewPreferencesOut(models.UserPreferences{}))
	}
	return c.JSON(http.StatusOK, models.NewPreferencesOut(*prefs))
}

// UpdatePreferences replaces the lists that are sent and keeps the rest.
func (controller *PreferencesController) UpdatePreferences(c echo.Context) error {
	var req models.PreferencesIn
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	user := currentUser(c)
	db := c.Get("__db").(*gorm.DB)

	prefs, err := services.LoadPreferences(db, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch preferences"})
	}
	if prefs == nil {
		prefs = &models.UserPreferences{UserAccountID: user.ID}
	}
	if req.PreferredColors != nil {
		prefs.PreferredColors = pq.StringArray(req.PreferredColors)
	}
	if req.PreferredCategories != nil {
		categories := make([]string, 0, len(req.PreferredCategories))
		for _, category := range req.PreferredCategories {
			categories = append(categories, models.CanonicalCategory(category))
		}
		prefs.PreferredCategories = categories
	}
	if req.StylePreferences != nil {
		prefs.StylePreferences = pq.StringArray(req.StylePreferences)
	}
	if req.City != nil {
		city := strings.TrimSpace(*req.City)
		if city == "" {
			prefs.City = nil
		} else {
			prefs.City = &city
		}
	}
	if req.DailySuggestions != nil {
		prefs.DailySuggestions = *req.DailySuggestions
	}
	if prefs.DailySuggestions && prefs.City == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Set a city to receive daily outfits"})
	}

	if err := db.Omit("UserAccount").Save(prefs).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save preferences"})
	}
	return c.JSON(http.StatusOK, models.NewPreferencesOut(*prefs))
}
