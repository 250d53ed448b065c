package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wardrobeapi/dbhelper"
	"wardrobeapi/models"
	"wardrobeapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rcEvent(eventType, appUserID string, extra map[string]interface{}) map[string]interface{} {
	event := map[string]interface{}{
		"app_id":               "app70fd013e95",
		"app_user_id":          appUserID,
		"country_code":         "US",
		"environment":          "SANDBOX",
		"event_timestamp_ms":   1715405366686,
		"expiration_at_ms":     1715412566686,
		"id":                   "791C890E-B8AD-46C9-8290-13EAF5F14C9F",
		"original_app_user_id": appUserID,
		"period_type":          "NORMAL",
		"product_id":           "wardrobe_pro",
		"purchased_at_ms":      1715405366686,
		"store":                "PLAY_STORE",
		"type":                 eventType,
	}
	for k, v := range extra {
		event[k] = v
	}
	return map[string]interface{}{"event": event}
}

func postWebhook(s *testServer, token string, body interface{}) *httptest.ResponseRecorder {
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer "+token, body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func withGoogle(google test.GoogleServiceMock) func(*Dependencies) {
	return func(d *Dependencies) { d.Google = google }
}

func TestWebhookInitialPurchase(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil, withGoogle(test.GoogleServiceMock{Subscription: string(models.Pro)}))
	user := test.FakeUser(db, nil)

	rec := postWebhook(s, "fake", rcEvent("INITIAL_PURCHASE", fmt.Sprint(user.ID), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Pro is active")

	var company models.Company
	db.First(&company, user.Memberships[0].CompanyID)
	assert.Equal(t, models.Pro, company.Subscription)
	assert.Nil(t, company.ClothesLimit())

	var updated models.UserAccount
	db.First(&updated, user.ID)
	require.NotNil(t, updated.Subscription)
	assert.Equal(t, string(models.Pro), *updated.Subscription)
	require.NotNil(t, updated.ExpirationDate)
	assert.Equal(t, 2099, updated.ExpirationDate.Year())

	require.Len(t, s.Admin.Messages, 1)
	assert.Contains(t, s.Admin.Messages[0], "My Wardrobe")
}

func TestWebhookAnonymousUserFallsBackToOriginalID(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil, withGoogle(test.GoogleServiceMock{Subscription: string(models.Pro)}))
	user := test.FakeUser(db, nil)

	body := rcEvent("RENEWAL", "$RCAnonymousID:8f2b", map[string]interface{}{
		"original_app_user_id": fmt.Sprint(user.ID),
	})
	rec := postWebhook(s, "fake", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var company models.Company
	db.First(&company, user.Memberships[0].CompanyID)
	assert.Equal(t, models.Pro, company.Subscription)
}

func TestWebhookLapsedEntitlementMovesToFree(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	db.Model(&models.Company{}).Where("id = ?", user.Memberships[0].CompanyID).Update("subscription", models.Pro)

	rec := postWebhook(s, "fake", rcEvent("RENEWAL", fmt.Sprint(user.ID), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var company models.Company
	db.First(&company, user.Memberships[0].CompanyID)
	assert.Equal(t, models.Free, company.Subscription)
}

func TestWebhookExpiration(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	db.Model(&models.Company{}).Where("id = ?", user.Memberships[0].CompanyID).Update("subscription", models.Pro)

	rec := postWebhook(s, "fake", rcEvent("EXPIRATION", fmt.Sprint(user.ID), map[string]interface{}{
		"expiration_reason": "UNSUBSCRIBE",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var company models.Company
	db.First(&company, user.Memberships[0].CompanyID)
	assert.Equal(t, models.Free, company.Subscription)

	pushes := s.Push.All()
	require.Len(t, pushes, 1)
	assert.Equal(t, user.ID, pushes[0].UserID)
	assert.Equal(t, "subscription", pushes[0].Data["type"])
	require.Len(t, s.Admin.Messages, 1)
	assert.Contains(t, s.Admin.Messages[0], "UNSUBSCRIBE")
}

func TestWebhookBillingErrorCancellation(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	db.Model(&models.Company{}).Where("id = ?", user.Memberships[0].CompanyID).Update("subscription", models.Pro)

	rec := postWebhook(s, "fake", rcEvent("CANCELLATION", fmt.Sprint(user.ID), map[string]interface{}{
		"cancel_reason": "BILLING_ERROR",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var company models.Company
	db.First(&company, user.Memberships[0].CompanyID)
	// access lasts until the expiration event
	assert.Equal(t, models.Pro, company.Subscription)
	assert.Len(t, s.Push.All(), 1)
}

func TestWebhookRejectsBadToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	s := newTestServer(t, db, nil)

	rec := postWebhook(s, "not-the-token", rcEvent("INITIAL_PURCHASE", "1", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookUnknownUser(t *testing.T) {
	db := dbhelper.SetupTestDB()
	s := newTestServer(t, db, nil)

	rec := postWebhook(s, "fake", rcEvent("INITIAL_PURCHASE", "not-a-number", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, s.Admin.Messages, 1)
	assert.Contains(t, s.Admin.Messages[0], "not-a-number")
}
