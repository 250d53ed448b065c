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

func TestGetProfileOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	test.FakeClothing(db, user, "top", "Blue", "medium")
	test.FakeClothing(db, user, "bottom", "Black", "medium")

	rec := s.do("GET", "/wardrobe/profile/me", user, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var payload models.UserMeOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, user.Name, payload.Name)
	assert.Equal(t, user.Email, payload.Email)
	assert.Equal(t, "My Wardrobe", payload.Company.Name)
	assert.EqualValues(t, 2, payload.ClothesCount)
	assert.EqualValues(t, 0, payload.OutfitsCount)
	assert.Nil(t, payload.Preferences)
}

func TestProfileSettings(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)

	rec := s.do("POST", "/wardrobe/profile/settings", user, echo.Map{
		"receive_notifications": false,
		"language":              "ru",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.UserAccount
	db.Preload("Memberships.Company").First(&updated, user.ID)
	assert.False(t, updated.ReceiveNotifications)
	assert.Equal(t, "ru", updated.Memberships[0].Company.Language)

	rec = s.do("POST", "/wardrobe/profile/settings", user, echo.Map{"language": "klingon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushTokenLifecycle(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)

	token := models.UserPushIn{Token: "ios-device-token", Platform: "ios"}
	rec := s.do("POST", "/wardrobe/profile/push-token", user, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// registering twice keeps one row
	rec = s.do("POST", "/wardrobe/profile/push-token", user, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var count int64
	db.Model(&models.UserPushToken{}).Where("user_account_id = ? and token = ?", user.ID, token.Token).Count(&count)
	assert.EqualValues(t, 1, count)

	rec = s.do("POST", "/wardrobe/profile/push-token", user, models.UserPushIn{Token: "x", Platform: "symbian"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("POST", "/wardrobe/profile/push-token/delete", user, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["deleted"])

	db.Model(&models.UserPushToken{}).Where("user_account_id = ? and token = ?", user.ID, token.Token).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDeleteAccount(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)

	rec := s.do("POST", "/wardrobe/profile/delete-account", user, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var deleted models.UserAccount
	db.First(&deleted, user.ID)
	assert.NotNil(t, deleted.ConfirmedDeleteDate)
	var tokens int64
	db.Model(&models.UserPushToken{}).Where("user_account_id = ?", user.ID).Count(&tokens)
	assert.EqualValues(t, 0, tokens)

	// the token still parses but the account is gone
	rec = s.do("GET", "/wardrobe/profile/me", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAccountOverview(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, newTestQuota(t))
	user := test.FakeUser(db, nil)
	test.FakeClothing(db, user, "top", "Blue", "medium")

	rec := s.do("GET", "/wardrobe/account/overview", user, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out models.WardrobeOverviewOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.EqualValues(t, 1, out.ClothesCount)
	assert.EqualValues(t, 0, out.TodayAIOutfits)
	require.NotNil(t, out.DailyAIOutfitLimit)
	assert.EqualValues(t, models.FreeDailyAIOutfitLimit, *out.DailyAIOutfitLimit)
	assert.Nil(t, out.LLMModel)

	rec = s.do("POST", "/wardrobe/account/update", user, echo.Map{"llm_model": "gemini-2.5-pro"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("POST", "/wardrobe/account/update", user, echo.Map{"name": "Capsule"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var company models.Company
	db.First(&company, user.Memberships[0].CompanyID)
	assert.Equal(t, "Capsule", company.Name)
}
