package controllers

import (
	"fmt"
	"net/http"

	"wardrobeapi/models"
	"wardrobeapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyController manages the wardrobe account behind the signed in user.
type CompanyController struct {
	Quota *services.QuotaService
}

func (controller *CompanyController) CompanyRoutes(g *echo.Group) {
	g.GET("/overview", func(c echo.Context) error {
		user := currentUser(c)
		db := c.Get("__db").(*gorm.DB)
		var company models.Company
		if err := db.First(&company, currentCompany(c).ID).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something happened"})
		}

		out := models.WardrobeOverviewOut{
			CompanyInfoOut:             models.NewCompanyInfoOut(company),
			DailyAIOutfitLimit:         company.DailyAIOutfitLimit(),
			DailyClothingAnalysisLimit: company.DailyClothingAnalysisLimit(),
		}
		if err := db.Model(&models.Clothing{}).Where("company_id = ?", company.ID).Count(&out.ClothesCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get clothes data"})
		}
		if err := db.Model(&models.Outfit{}).Where("company_id = ?", company.ID).Count(&out.OutfitsCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
		}
		if controller.Quota != nil {
			ctx := c.Request().Context()
			var err error
			if out.TodayAIOutfits, err = controller.Quota.Used(ctx, quotaAIOutfits, company.ID); err != nil {
				zap.S().Warnf("[Quota] usage of %d: %v", company.ID, err)
			}
			if out.TodayClothingAnalyses, err = controller.Quota.Used(ctx, quotaClothingAnalysis, company.ID); err != nil {
				zap.S().Warnf("[Quota] usage of %d: %v", company.ID, err)
			}
		}
		if user.IsSuperadmin && company.EnforcedLLMModel != nil {
			model := services.LLMModelName(*company.EnforcedLLMModel).String()
			out.LLMModel = &model
		}
		return c.JSON(http.StatusOK, out)
	})

	g.POST("/update", func(c echo.Context) error {
		user := currentUser(c)
		db := c.Get("__db").(*gorm.DB)
		var company models.Company
		if err := db.First(&company, currentCompany(c).ID).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something happened"})
		}
		var req models.WardrobeUpdateIn
		if ok, err := bindAndValidate(c, &req); !ok {
			return err
		}
		if req.Name != nil {
			company.Name = *req.Name
		}
		if req.Language != nil {
			company.Language = *req.Language
		}
		if req.LLMModel != nil {
			if !user.IsSuperadmin {
				sentry.CaptureException(fmt.Errorf("user %s tried to set LLM model %q without permission", user.Email, *req.LLMModel))
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Bad request"})
			}
			model := int32(services.ParseLLMModelName(*req.LLMModel))
			company.EnforcedLLMModel = &model
		}
		if err := db.Omit("Owner", "Members").Save(&company).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update wardrobe"})
		}
		return c.JSON(http.StatusOK, models.NewCompanyInfoOut(company))
	})
}
