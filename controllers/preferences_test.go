package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"wardrobeapi/dbhelper"
	"wardrobeapi/models"
	"wardrobeapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesDefaults(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)

	rec := s.do("GET", "/wardrobe/preferences", user, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"preferred_colors": [],
		"preferred_categories": [],
		"style_preferences": [],
		"city": null,
		"daily_suggestions": false
	}`, rec.Body.String())
}

func TestUpdatePreferences(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)

	rec := s.do("PUT", "/wardrobe/preferences", user, echo.Map{"daily_suggestions": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("PUT", "/wardrobe/preferences", user, echo.Map{
		"preferred_colors":     []string{"Navy", "White"},
		"preferred_categories": []string{"Top", "SHOES"},
		"city":                 "Baku",
		"daily_suggestions":    true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out models.PreferencesOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"top", "shoes"}, out.PreferredCategories)
	assert.True(t, out.DailySuggestions)

	// only the sent fields change
	rec = s.do("PUT", "/wardrobe/preferences", user, echo.Map{"style_preferences": []string{"Minimalist"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"Navy", "White"}, out.PreferredColors)
	assert.Equal(t, []string{"Minimalist"}, out.StylePreferences)
	require.NotNil(t, out.City)
	assert.Equal(t, "Baku", *out.City)

	var count int64
	db.Model(&models.UserPreferences{}).Where("user_account_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	rec = s.do("PUT", "/wardrobe/preferences", user, echo.Map{"preferred_categories": []string{"hats"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("GET", "/wardrobe/profile/me", user, nil)
	var me models.UserMeOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.NotNil(t, me.Preferences)
	assert.Equal(t, []string{"Navy", "White"}, me.Preferences.PreferredColors)
}

func TestPreferencesShapeSuggestions(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	test.FakeClothing(db, user, "top", "Blue", "medium")
	test.FakeClothing(db, user, "top", "Red", "medium")
	test.FakeClothing(db, user, "bottom", "Black", "medium")

	weather := echo.Map{"temperature": 20, "condition": "Clear"}
	rec := s.do("POST", "/wardrobe/outfits/suggest", user, echo.Map{"weather": weather})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var plain models.SuggestOutfitsOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plain))

	rec = s.do("PUT", "/wardrobe/preferences", user, echo.Map{"preferred_colors": []string{"Red"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do("POST", "/wardrobe/outfits/suggest", user, echo.Map{"weather": weather})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var preferred models.SuggestOutfitsOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preferred))
	require.Len(t, preferred.Suggestions, 2)
	assert.Equal(t, "Red", preferred.Suggestions[0].Items[0].Color)
	assert.Greater(t, preferred.Suggestions[0].Score, plain.Suggestions[0].Score)

	rec = s.do("POST", "/wardrobe/outfits/suggest", user, echo.Map{"weather": weather, "use_preferences": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ignored models.SuggestOutfitsOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ignored))
	assert.Equal(t, plain.Suggestions[0].Score, ignored.Suggestions[0].Score)
}
