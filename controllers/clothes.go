package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"wardrobeapi/models"
	"wardrobeapi/outfits"
	"wardrobeapi/services"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	quotaClothingAnalysis = "clothing_analysis"
	quotaAIOutfits        = "ai_outfits"
)

type ClothesController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	Quota      *services.QuotaService
	Bucket     string
}

func (controller *ClothesController) ClothesRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateClothing)
	g.GET("/list", controller.ListClothes)
	g.GET("/:id", controller.GetClothing)
	g.PUT("/:id", controller.UpdateClothing)
	g.DELETE("/:id", controller.DeleteClothing)
	g.POST("/:id/analyze", controller.AnalyzeClothing)
}

// presignClothes maps rows to responses with readable photo links. Links are
// resolved concurrently through the cache, falling back to storage directly
// when the cache fails.
func presignClothes(ctx context.Context, cache services.URLCacheServiceProvider, aws services.AWSServiceProvider, bucket string, clothes []models.Clothing) []models.ClothingOut {
	out := make([]models.ClothingOut, len(clothes))
	var wg sync.WaitGroup
	for i, item := range clothes {
		out[i] = models.NewClothingOut(item)
		if item.ImageURL == nil || *item.ImageURL == "" {
			continue
		}
		wg.Add(1)
		go func(index int, objectKey string) {
			defer wg.Done()
			url, err := cache.GetReadURL(ctx, objectKey)
			if err != nil {
				zap.S().Warnf("[URLCache] cache failed for key '%s': %v, reading from storage", objectKey, err)
				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("failure_type", "cache_system")
					scope.SetExtra("objectKey", objectKey)
					sentry.CaptureException(err)
				})
				url, err = aws.GetPresignedR2FileReadURL(ctx, bucket, objectKey)
				if err != nil {
					zap.S().Errorf("[URLCache] storage fallback failed for key '%s': %v", objectKey, err)
					sentry.CaptureException(err)
					return
				}
			}
			out[index].Uri = &url
		}(i, *item.ImageURL)
	}
	wg.Wait()
	return out
}

func groupClothes(items []models.ClothingOut) models.ClothesListOut {
	grouped := models.ClothesListOut{
		Tops:        []models.ClothingOut{},
		Bottoms:     []models.ClothingOut{},
		Dresses:     []models.ClothingOut{},
		Jackets:     []models.ClothingOut{},
		Outerwear:   []models.ClothingOut{},
		Shoes:       []models.ClothingOut{},
		Accessories: []models.ClothingOut{},
		Other:       []models.ClothingOut{},
	}
	for _, item := range items {
		switch outfits.ParseCategory(item.Category) {
		case outfits.CategoryTop:
			grouped.Tops = append(grouped.Tops, item)
		case outfits.CategoryBottom:
			grouped.Bottoms = append(grouped.Bottoms, item)
		case outfits.CategoryDress:
			grouped.Dresses = append(grouped.Dresses, item)
		case outfits.CategoryJacket:
			grouped.Jackets = append(grouped.Jackets, item)
		case outfits.CategoryOuterwear:
			grouped.Outerwear = append(grouped.Outerwear, item)
		case outfits.CategoryShoes:
			grouped.Shoes = append(grouped.Shoes, item)
		case outfits.CategoryAccessory:
			grouped.Accessories = append(grouped.Accessories, item)
		default:
			grouped.Other = append(grouped.Other, item)
		}
	}
	return grouped
}

// findOwnedClothing writes the error response itself when ok is false.
func findOwnedClothing(c echo.Context) (models.Clothing, bool, error) {
	var clothing models.Clothing
	id, err := pathID(c, "id")
	if err != nil {
		return clothing, false, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid clothing id"})
	}
	db := c.Get("__db").(*gorm.DB)
	user := currentUser(c)
	result := db.Where("id = ? AND owner_id = ?", id, user.ID).Take(&clothing)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return clothing, false, c.JSON(http.StatusNotFound, map[string]string{"error": "Clothing not found"})
	}
	if result.Error != nil {
		return clothing, false, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothing"})
	}
	return clothing, true, nil
}

func (controller *ClothesController) CreateClothing(c echo.Context) error {
	var req models.CreateClothingIn
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	user := currentUser(c)
	company := currentCompany(c)
	db := c.Get("__db").(*gorm.DB)

	hasFile := req.FileName != nil && *req.FileName != ""
	analyze := req.Analyze != nil && *req.Analyze
	if hasFile && !services.IsAllowedImage(*req.FileName) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Only jpg, png, heic and webp photos are supported"})
	}
	if analyze && !hasFile {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A photo is needed to analyze the item"})
	}
	if !hasFile && req.Category == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Provide a photo or at least a category"})
	}

	if limit := company.ClothesLimit(); limit != nil {
		var total int64
		if err := db.Model(&models.Clothing{}).Where("company_id = ?", company.ID).Count(&total).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get clothes data"})
		}
		if total >= *limit {
			zap.S().Infof("[User %d] wardrobe limit reached: %d", user.ID, total)
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %d clothes, please subscribe", *limit)})
		}
	}

	clothing := models.Clothing{
		OwnerID:          user.ID,
		CompanyID:        company.ID,
		ImageStatus:      "draft",
		ProcessingStatus: models.ProcessingIdle,
	}
	req.ClothingAttributesIn.ApplyTo(&clothing)

	var uploadURL *string
	if hasFile {
		objectKey := services.ClothingObjectKey(user.ID, *req.FileName)
		link, err := controller.AWSService.PresignLink(c.Request().Context(), controller.Bucket, objectKey)
		if err != nil {
			zap.S().Errorf("Unable to presign upload for user %d: %v", user.ID, err)
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error while creating clothes with attachment"})
		}
		clothing.ImageURL = &objectKey
		clothing.ImageStatus = "uploaded"
		uploadURL = &link
	}

	if analyze {
		ok, err := consumeQuota(c, controller.Quota, quotaClothingAnalysis, company.ID, company.DailyClothingAnalysisLimit())
		if !ok {
			return err
		}
		clothing.ProcessingStatus = models.ProcessingPending
	}

	if err := db.Omit("Owner", "Company").Create(&clothing).Error; err != nil {
		if analyze {
			releaseQuota(c.Request().Context(), controller.Quota, quotaClothingAnalysis, company.ID)
		}
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save clothing"})
	}

	if analyze {
		if err := controller.enqueueAnalysis(c, &clothing); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not analyze clothing, please try again"})
		}
	}

	return c.JSON(http.StatusCreated, models.ClothingCreatedOut{
		Clothing:      models.NewClothingOut(clothing),
		FileUploadUrl: uploadURL,
	})
}

func (controller *ClothesController) enqueueAnalysis(c echo.Context, clothing *models.Clothing) error {
	db := c.Get("__db").(*gorm.DB)
	task, err := tasks.NewClothingAnalysisTask(clothing.ID)
	if err == nil {
		err = enqueue(c, task, fmt.Sprintf("Analyze clothing %d", clothing.ID))
	}
	if err != nil {
		releaseQuota(c.Request().Context(), controller.Quota, quotaClothingAnalysis, clothing.CompanyID)
		clothing.ProcessingStatus = models.ProcessingIdle
		db.Model(clothing).Update("processing_status", models.ProcessingIdle)
		return err
	}
	return nil
}

func (controller *ClothesController) ListClothes(c echo.Context) error {
	user := currentUser(c)
	db := c.Get("__db").(*gorm.DB)

	clothes, err := services.LoadWardrobe(db, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	items := presignClothes(c.Request().Context(), controller.URLCache, controller.AWSService, controller.Bucket, clothes)
	return c.JSON(http.StatusOK, groupClothes(items))
}

func (controller *ClothesController) GetClothing(c echo.Context) error {
	clothing, ok, err := findOwnedClothing(c)
	if !ok {
		return err
	}
	items := presignClothes(c.Request().Context(), controller.URLCache, controller.AWSService, controller.Bucket, []models.Clothing{clothing})
	return c.JSON(http.StatusOK, items[0])
}

func (controller *ClothesController) UpdateClothing(c echo.Context) error {
	clothing, ok, err := findOwnedClothing(c)
	if !ok {
		return err
	}
	var req models.ClothingAttributesIn
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.ApplyTo(&clothing)

	db := c.Get("__db").(*gorm.DB)
	if err := db.Omit("Owner", "Company").Save(&clothing).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update clothing"})
	}
	items := presignClothes(c.Request().Context(), controller.URLCache, controller.AWSService, controller.Bucket, []models.Clothing{clothing})
	return c.JSON(http.StatusOK, items[0])
}

// DeleteClothing removes the row only. Saved outfits keep the id and are
// reported incomplete.
func (controller *ClothesController) DeleteClothing(c echo.Context) error {
	clothing, ok, err := findOwnedClothing(c)
	if !ok {
		return err
	}
	db := c.Get("__db").(*gorm.DB)
	if err := db.Delete(&clothing).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete clothing"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (controller *ClothesController) AnalyzeClothing(c echo.Context) error {
	clothing, ok, err := findOwnedClothing(c)
	if !ok {
		return err
	}
	if clothing.ImageURL == nil || *clothing.ImageURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A photo is needed to analyze the item"})
	}
	if clothing.ProcessingStatus == models.ProcessingPending {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Analysis is already in progress"})
	}
	company := currentCompany(c)
	if ok, err := consumeQuota(c, controller.Quota, quotaClothingAnalysis, company.ID, company.DailyClothingAnalysisLimit()); !ok {
		return err
	}

	db := c.Get("__db").(*gorm.DB)
	err = db.Model(&clothing).Updates(map[string]interface{}{
		"processing_status":     models.ProcessingPending,
		"process_retry_times":   0,
		"process_error_message": nil,
	}).Error
	if err != nil {
		releaseQuota(c.Request().Context(), controller.Quota, quotaClothingAnalysis, company.ID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update clothing"})
	}
	clothing.ProcessingStatus = models.ProcessingPending
	if err := controller.enqueueAnalysis(c, &clothing); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not analyze clothing, please try again"})
	}
	return c.JSON(http.StatusAccepted, models.NewClothingOut(clothing))
}
