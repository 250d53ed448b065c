package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"wardrobeapi/dbhelper"
	"wardrobeapi/models"
	"wardrobeapi/tasks"
	"wardrobeapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClothingWithPhotoAndAnalysis(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, newTestQuota(t))
	user := test.FakeUser(db, nil)

	reqBody := models.CreateClothingIn{
		FileName: StrPointer("shirt.JPG"),
		Analyze:  BoolPointer(true),
	}
	rec := s.do("POST", "/wardrobe/clothes/create", user, reqBody)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response models.ClothingCreatedOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.FileUploadUrl)
	assert.True(t, strings.HasPrefix(*response.FileUploadUrl, "https://fakebucketurl.com/clothes/"), *response.FileUploadUrl)
	assert.Equal(t, models.ProcessingPending, response.Clothing.ProcessingStatus)
	assert.Equal(t, []string{tasks.TypeAnalyzeClothing}, s.Tasks.Types())

	var stored models.Clothing
	require.NoError(t, db.First(&stored, response.Clothing.ID).Error)
	assert.Equal(t, "uploaded", stored.ImageStatus)
	require.NotNil(t, stored.ImageURL)
	assert.True(t, strings.HasSuffix(*stored.ImageURL, ".jpg"), *stored.ImageURL)
}

func TestCreateClothingManually(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)

	rec := s.do("POST", "/wardrobe/clothes/create", user, echo.Map{
		"name":         "Denim Jacket",
		"category":     "Jacket",
		"color":        "Blue",
		"warmth_level": "Medium",
		"tags":         []string{"denim"},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response models.ClothingCreatedOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Nil(t, response.FileUploadUrl)
	assert.Equal(t, "Denim Jacket", response.Clothing.Name)
	assert.Equal(t, "jacket", response.Clothing.Category)
	assert.Equal(t, "medium", response.Clothing.WarmthLevel)
	assert.Equal(t, models.ProcessingIdle, response.Clothing.ProcessingStatus)
	assert.Empty(t, s.Tasks.Types())
}

func TestCreateClothingInvalidInput(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)

	cases := map[string]interface{}{
		"nothing to go on":  echo.Map{"name": "Mystery"},
		"unknown category":  echo.Map{"category": "spaceship"},
		"unsupported photo": echo.Map{"file_name": "animation.gif"},
		"analyze no photo":  echo.Map{"category": "top", "analyze": true},
		"bad versatility":   echo.Map{"category": "top", "versatility_score": 11},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do("POST", "/wardrobe/clothes/create", user, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateClothingLimitReached(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	db.Model(&models.Company{}).Where("id = ?", user.Memberships[0].CompanyID).Update("enforced_clothing_limit", 1)
	test.FakeClothing(db, user, "top", "Blue", "medium")

	rec := s.do("POST", "/wardrobe/clothes/create", user, echo.Map{"category": "bottom"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "free limit of 1")
}

func TestCreateClothingQueueDown(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	s.Tasks.Err = errors.New("redis down")
	user := test.FakeUser(db, nil)

	rec := s.do("POST", "/wardrobe/clothes/create", user, models.CreateClothingIn{
		FileName: StrPointer("shirt.png"),
		Analyze:  BoolPointer(true),
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var stored models.Clothing
	require.NoError(t, db.Where("owner_id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, models.ProcessingIdle, stored.ProcessingStatus)
}

func TestListClothesGrouped(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	other := test.FakeUserV2(db, nil, "Other", "other@example.com")
	top := test.FakeClothing(db, user, "top", "Blue", "medium")
	test.FakeClothing(db, user, "shoes", "Black", "")
	test.FakeClothing(db, user, "scarf", "Red", "light")
	test.FakeClothing(db, other, "bottom", "Gray", "medium")

	rec := s.do("GET", "/wardrobe/clothes/list", user, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out models.ClothesListOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Tops, 1)
	assert.Equal(t, top.ID, out.Tops[0].ID)
	require.NotNil(t, out.Tops[0].Uri)
	assert.Equal(t, fmt.Sprintf("https://fakebucketurl.com/read/%s", *top.ImageURL), *out.Tops[0].Uri)
	assert.Len(t, out.Shoes, 1)
	assert.Len(t, out.Other, 1)
	assert.Empty(t, out.Bottoms)
}

func TestUpdateAndDeleteClothing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	other := test.FakeUserV2(db, nil, "Other", "other@example.com")
	item := test.FakeClothing(db, user, "top", "Blue", "medium")

	rec := s.do("PUT", fmt.Sprintf("/wardrobe/clothes/%d", item.ID), user, echo.Map{
		"name":              "Favourite shirt",
		"water_resistance":  "water resistant",
		"versatility_score": 9,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.ClothingOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Favourite shirt", updated.Name)
	require.NotNil(t, updated.WaterResistance)
	assert.Equal(t, "Water Resistant", *updated.WaterResistance)
	assert.Equal(t, "Blue", updated.Color)

	rec = s.do("GET", fmt.Sprintf("/wardrobe/clothes/%d", item.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("DELETE", fmt.Sprintf("/wardrobe/clothes/%d", item.ID), user, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do("GET", fmt.Sprintf("/wardrobe/clothes/%d", item.ID), user, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("GET", "/wardrobe/clothes/abc", user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeClothing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, nil)
	user := test.FakeUser(db, nil)
	item := test.FakeClothing(db, user, "top", "Blue", "medium")

	rec := s.do("POST", fmt.Sprintf("/wardrobe/clothes/%d/analyze", item.ID), user, nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, []string{tasks.TypeAnalyzeClothing}, s.Tasks.Types())

	rec = s.do("POST", fmt.Sprintf("/wardrobe/clothes/%d/analyze", item.ID), user, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	noPhoto := models.Clothing{Name: "Belt", Category: "accessory", OwnerID: user.ID, CompanyID: user.Memberships[0].CompanyID, ProcessingStatus: models.ProcessingIdle}
	db.Omit("Owner", "Company").Create(&noPhoto)
	rec = s.do("POST", fmt.Sprintf("/wardrobe/clothes/%d/analyze", noPhoto.ID), user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeClothingDailyLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	s := newTestServer(t, db, newTestQuota(t))
	user := test.FakeUser(db, nil)
	db.Model(&models.Company{}).Where("id = ?", user.Memberships[0].CompanyID).Update("enforced_daily_clothing_analysis", 1)
	first := test.FakeClothing(db, user, "top", "Blue", "medium")
	second := test.FakeClothing(db, user, "bottom", "Black", "medium")

	rec := s.do("POST", fmt.Sprintf("/wardrobe/clothes/%d/analyze", first.ID), user, nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = s.do("POST", fmt.Sprintf("/wardrobe/clothes/%d/analyze", second.ID), user, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Len(t, s.Tasks.Types(), 1)
}
