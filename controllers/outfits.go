package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"wardrobeapi/languageutil"
	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/outfits"
	"wardrobeapi/services"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OutfitsController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	Weather    services.WeatherProvider
	Quota      *services.QuotaService
	Bucket     string
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.POST("/suggest", controller.Suggest)
	g.POST("", controller.SaveOutfit)
	g.GET("", controller.ListOutfits)
	g.PATCH("/:id/rating", controller.RateOutfit)
	g.PATCH("/:id/favorite", controller.FavoriteOutfit)
	g.DELETE("/:id", controller.DeleteOutfit)
	g.POST("/ai", controller.RequestAIOutfits)
	g.GET("/ai/:id", controller.GetAIOutfits)
}

// lookupWeather resolves a city. A failing weather service is not fatal, the
// engine works without weather.
func (controller *OutfitsController) lookupWeather(c echo.Context, city string) (*outfits.WeatherSnapshot, error) {
	if controller.Weather == nil || strings.TrimSpace(city) == "" {
		return nil, nil
	}
	data, err := controller.Weather.ByCity(c.Request().Context(), city)
	if errors.Is(err, services.ErrCityNotFound) {
		return nil, err
	}
	if err != nil {
		zap.S().Warnf("[Weather] lookup for %q failed, ranking without weather: %v", city, err)
		return nil, nil
	}
	return data.Snapshot(), nil
}

func (controller *OutfitsController) Suggest(c echo.Context) error {
	var req models.SuggestOutfitsIn
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	user := currentUser(c)
	db := c.Get("__db").(*gorm.DB)

	clothes, err := services.LoadWardrobe(db, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	prefs, err := services.LoadPreferences(db, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch preferences"})
	}

	weather := req.Weather.Snapshot()
	if weather == nil {
		switch {
		case req.City != nil && *req.City != "":
			weather, err = controller.lookupWeather(c, *req.City)
			if errors.Is(err, services.ErrCityNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "City not found"})
			}
		case prefs != nil && prefs.City != nil:
			weather, _ = controller.lookupWeather(c, *prefs.City)
		}
	}
	if req.UsePreferences != nil && !*req.UsePreferences {
		prefs = nil
	}

	suggestions := services.RankWardrobe(clothes, weather, prefs)
	metrics.SuggestionsServed.WithLabelValues("engine").Add(float64(len(suggestions)))

	byID := make(map[uint]models.Clothing, len(clothes))
	for _, item := range clothes {
		byID[item.ID] = item
	}
	out := models.SuggestOutfitsOut{Suggestions: []models.SuggestionOut{}, Weather: weather}
	for _, s := range suggestions {
		ids := services.SuggestionClothingIDs(s)
		rows := make([]models.Clothing, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, byID[id])
		}
		out.Suggestions = append(out.Suggestions, models.SuggestionOut{
			Name:      languageutil.OutfitName(s.Items),
			ItemIDs:   ids,
			Items:     presignClothes(c.Request().Context(), controller.URLCache, controller.AWSService, controller.Bucket, rows),
			Score:     s.Score,
			Reasoning: languageutil.Sentence(s.Reasoning),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (controller *OutfitsController) SaveOutfit(c echo.Context) error {
	var req models.SaveOutfitIn
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	user := currentUser(c)
	db := c.Get("__db").(*gorm.DB)

	ids := uniqueIDs(req.ClothingIDs)
	if len(ids) < 2 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "An outfit needs at least two different items"})
	}
	var owned []models.Clothing
	if err := db.Where("id IN ? AND owner_id = ?", ids, user.ID).Find(&owned).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	if len(owned) != len(ids) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Some clothing items do not exist in your wardrobe"})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		items := make([]outfits.ClothingItem, 0, len(owned))
		for _, item := range owned {
			items = append(items, item.ToWardrobeItem())
		}
		name = languageutil.OutfitName(items)
	}
	source := req.Source
	if source == "" {
		source = models.OutfitSourceEngine
	}
	clothingIDs := make([]int64, 0, len(ids))
	for _, id := range ids {
		clothingIDs = append(clothingIDs, int64(id))
	}

	outfit := models.Outfit{
		Name:             name,
		OwnerID:          user.ID,
		CompanyID:        currentCompany(c).ID,
		ClothingIDs:      clothingIDs,
		WeatherCondition: req.WeatherCondition,
		Temperature:      req.Temperature,
		Occasion:         req.Occasion,
		Reasoning:        req.Reasoning,
		StyleNotes:       req.StyleNotes,
		Score:            req.Score,
		Source:           source,
	}
	if err := db.Omit("Owner").Create(&outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save outfit"})
	}
	live := controller.liveItems(c, owned)
	return c.JSON(http.StatusCreated, newOutfitOut(outfit, live))
}

func (controller *OutfitsController) liveItems(c echo.Context, clothes []models.Clothing) map[uint]models.ClothingOut {
	items := presignClothes(c.Request().Context(), controller.URLCache, controller.AWSService, controller.Bucket, clothes)
	live := make(map[uint]models.ClothingOut, len(items))
	for _, item := range items {
		live[item.ID] = item
	}
	return live
}

// newOutfitOut drops ids of deleted clothes. An outfit left with fewer than
// two items is reported incomplete.
func newOutfitOut(o models.Outfit, live map[uint]models.ClothingOut) models.OutfitOut {
	out := models.OutfitOut{
		ID:               o.ID,
		Name:             o.Name,
		ClothingIDs:      []int64{},
		Items:            []models.ClothingOut{},
		WeatherCondition: o.WeatherCondition,
		Temperature:      o.Temperature,
		Occasion:         o.Occasion,
		Reasoning:        o.Reasoning,
		StyleNotes:       o.StyleNotes,
		Score:            o.Score,
		Source:           o.Source,
		Rating:           o.Rating,
		IsFavorite:       o.IsFavorite,
		CreatedAt:        o.CreatedAt.Format(time.RFC3339),
	}
	for _, id := range o.ClothingIDs {
		item, ok := live[uint(id)]
		if !ok {
			continue
		}
		out.ClothingIDs = append(out.ClothingIDs, id)
		out.Items = append(out.Items, item)
	}
	out.Incomplete = len(out.Items) < 2
	return out
}

func (controller *OutfitsController) ListOutfits(c echo.Context) error {
	user := currentUser(c)
	db := c.Get("__db").(*gorm.DB)

	query := db.Where("owner_id = ?", user.ID)
	if c.QueryParam("favorites") == "true" {
		query = query.Where("is_favorite = ?", true)
	}
	var saved []models.Outfit
	if err := query.Order("created_at desc").Find(&saved).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfits"})
	}

	var ids []int64
	for _, o := range saved {
		ids = append(ids, o.ClothingIDs...)
	}
	var clothes []models.Clothing
	if len(ids) > 0 {
		if err := db.Where("id IN ? AND owner_id = ?", ids, user.ID).Find(&clothes).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
		}
	}
	live := controller.liveItems(c, clothes)

	out := make([]models.OutfitOut, 0, len(saved))
	for _, o := range saved {
		out = append(out, newOutfitOut(o, live))
	}
	return c.JSON(http.StatusOK, out)
}

func findOwnedOutfit(c echo.Context) (models.Outfit, bool, error) {
	var outfit models.Outfit
	id, err := pathID(c, "id")
	if err != nil {
		return outfit, false, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid outfit id"})
	}
	db := c.Get("__db").(*gorm.DB)
	result := db.Where("id = ? AND owner_id = ?", id, currentUser(c).ID).Take(&outfit)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return outfit, false, c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	if result.Error != nil {
		return outfit, false, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfit"})
	}
	return outfit, true, nil
}

func (controller *OutfitsController) RateOutfit(c echo.Context) error {
	outfit, ok, err := findOwnedOutfit(c)
	if !ok {
		return err
	}
	var req models.RateOutfitIn
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	db := c.Get("__db").(*gorm.DB)
	if err := db.Model(&outfit).Update("rating", req.Rating).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to rate outfit"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": outfit.ID, "rating": req.Rating})
}

func (controller *OutfitsController) FavoriteOutfit(c echo.Context) error {
	outfit, ok, err := findOwnedOutfit(c)
	if !ok {
		return err
	}
	var req models.FavoriteOutfitIn
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	db := c.Get("__db").(*gorm.DB)
	if err := db.Model(&outfit).Update("is_favorite", *req.IsFavorite).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update outfit"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": outfit.ID, "is_favorite": *req.IsFavorite})
}

func (controller *OutfitsController) DeleteOutfit(c echo.Context) error {
	outfit, ok, err := findOwnedOutfit(c)
	if !ok {
		return err
	}
	db := c.Get("__db").(*gorm.DB)
	if err := db.Delete(&outfit).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete outfit"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (controller *OutfitsController) RequestAIOutfits(c echo.Context) error {
	var req models.AIOutfitRequestIn
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	user := currentUser(c)
	company := currentCompany(c)
	db := c.Get("__db").(*gorm.DB)

	var count int64
	if err := db.Model(&models.Clothing{}).Where("owner_id = ?", user.ID).Count(&count).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	if count < 2 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Add at least two items to your wardrobe first"})
	}

	weather := req.Weather.Snapshot()
	if weather == nil {
		prefs, err := services.LoadPreferences(db, user.ID)
		if err == nil && prefs != nil && prefs.City != nil {
			weather, _ = controller.lookupWeather(c, *prefs.City)
		}
	}

	if ok, err := consumeQuota(c, controller.Quota, quotaAIOutfits, company.ID, company.DailyAIOutfitLimit()); !ok {
		return err
	}

	generation := models.OutfitGeneration{
		UserAccountID:   user.ID,
		CompanyID:       company.ID,
		Occasion:        req.Occasion,
		AdditionalNotes: req.AdditionalNotes,
		Status:          models.GenerationPending,
	}
	if weather != nil {
		generation.Temperature = &weather.Temperature
		generation.Condition = services.StrPointer(weather.Condition)
		generation.City = services.StrPointer(weather.City)
	}
	if req.Preferences != nil {
		generation.Style = req.Preferences.Style
		generation.Colors = req.Preferences.Colors
		generation.ComfortLevel = req.Preferences.ComfortLevel
	}
	if err := db.Omit("UserAccount").Create(&generation).Error; err != nil {
		releaseQuota(c.Request().Context(), controller.Quota, quotaAIOutfits, company.ID)
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to start generation, please try again"})
	}

	task, err := tasks.NewOutfitGenerationTask(generation.ID)
	if err == nil {
		err = enqueue(c, task, "AI outfits")
	}
	if err != nil {
		releaseQuota(c.Request().Context(), controller.Quota, quotaAIOutfits, company.ID)
		msg := "Could not queue the request"
		db.Model(&generation).Updates(map[string]interface{}{"status": models.GenerationFailed, "generation_error_message": msg})
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not start generation, please try again"})
	}
	return c.JSON(http.StatusAccepted, newGenerationOut(generation, user.IsSuperadmin))
}

func newGenerationOut(g models.OutfitGeneration, withUsage bool) models.OutfitGenerationOut {
	out := models.OutfitGenerationOut{
		ID:           g.ID,
		Status:       g.Status,
		Occasion:     g.Occasion,
		Outfits:      []models.GeneratedOutfit{},
		GeneralTips:  g.GeneralTips,
		UsedFallback: g.UsedFallback,
	}
	if g.Status == models.GenerationFailed {
		out.Error = g.GenerationErrorMessage
	}
	if g.Result != nil {
		if err := json.Unmarshal([]byte(*g.Result), &out.Outfits); err != nil {
			zap.S().Errorf("[Generation: %d] stored result is unreadable: %v", g.ID, err)
		}
	}
	if withUsage {
		out.LLMModel = g.LLMModel
		out.TokenUsage = g.LLMTotalTokenCount
	}
	return out
}

func (controller *OutfitsController) GetAIOutfits(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid generation id"})
	}
	user := currentUser(c)
	db := c.Get("__db").(*gorm.DB)

	var generation models.OutfitGeneration
	result := db.Where("id = ? AND user_account_id = ?", id, user.ID).Take(&generation)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Generation not found"})
	}
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch generation"})
	}
	return c.JSON(http.StatusOK, newGenerationOut(generation, user.IsSuperadmin))
}
