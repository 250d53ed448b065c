package controllers

import (
	"net/http"
	"time"

	"wardrobeapi/models"
	"wardrobeapi/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProfileController struct{}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("/me", func(c echo.Context) error {
		user := currentUser(c)
		db := c.Get("__db").(*gorm.DB)
		company := currentCompany(c)

		out := models.UserMeOut{
			Id:                   UIntToStr(user.ID),
			Name:                 user.Name,
			Email:                user.Email,
			AvatarURL:            user.AvatarURL,
			ReceiveNotifications: user.ReceiveNotifications,
			Company:              models.NewCompanyInfoOut(company),
		}
		if err := db.Model(&models.Clothing{}).Where("owner_id = ?", user.ID).Count(&out.ClothesCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something happened"})
		}
		if err := db.Model(&models.Outfit{}).Where("owner_id = ?", user.ID).Count(&out.OutfitsCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something happened"})
		}
		prefs, err := services.LoadPreferences(db, user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something happened"})
		}
		if prefs != nil {
			p := models.NewPreferencesOut(*prefs)
			out.Preferences = &p
		}
		return c.JSON(http.StatusOK, out)
	})

	g.POST("/settings", func(c echo.Context) error {
		user := currentUser(c)
		db := c.Get("__db").(*gorm.DB)
		settingsIn := new(models.UserSettingsIn)
		if ok, err := bindAndValidate(c, settingsIn); !ok {
			return err
		}
		if settingsIn.ReceiveNotifications != nil {
			if err := db.Model(&models.UserAccount{}).Where("id = ?", user.ID).
				Update("receive_notifications", *settingsIn.ReceiveNotifications).Error; err != nil {
				return echo.ErrInternalServerError
			}
		}
		if settingsIn.Language != nil {
			company := currentCompany(c)
			if err := db.Model(&models.Company{}).Where("id = ?", company.ID).
				Update("language", *settingsIn.Language).Error; err != nil {
				return echo.ErrInternalServerError
			}
		}
		return c.JSON(http.StatusOK, settingsIn)
	})

	g.POST("/push-token", func(c echo.Context) error {
		user := currentUser(c)
		db := c.Get("__db").(*gorm.DB)
		tokenRequest := new(models.UserPushIn)
		if err := c.Bind(tokenRequest); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if !models.ValidatePlatformRaw(tokenRequest.Platform) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Please provide proper platform parameter"})
		}
		if err := c.Validate(tokenRequest); err != nil {
			return err
		}
		pushData := models.UserPushToken{
			Platform:      models.Platform(tokenRequest.Platform),
			Token:         tokenRequest.Token,
			UserAccountID: user.ID,
			Active:        true,
		}
		// same device can sign in to different accounts and still receive pushes
		result := db.Omit("UserAccount").
			Where("token = ? and user_account_id = ?", tokenRequest.Token, user.ID).
			FirstOrCreate(&pushData)
		if result.Error != nil {
			zap.S().Errorf("[Push] register for %d: %v", user.ID, result.Error)
			return echo.ErrInternalServerError
		}
		if result.RowsAffected >= 1 {
			zap.S().Infof("[Push] token created for user %d, platform %s", user.ID, tokenRequest.Platform)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "registered",
			"push_id": pushData.ID,
		})
	})

	g.POST("/push-token/delete", func(c echo.Context) error {
		user := currentUser(c)
		db := c.Get("__db").(*gorm.DB)
		tokenRequest := new(models.UserPushIn)
		if err := c.Bind(tokenRequest); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if tokenRequest.Token == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "token is required"})
		}
		result := db.Where("token = ? and user_account_id = ?", tokenRequest.Token, user.ID).Delete(&models.UserPushToken{})
		if result.Error != nil {
			return echo.ErrInternalServerError
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "deleted",
			"deleted": result.RowsAffected > 0,
		})
	})

	g.POST("/logout", func(c echo.Context) error {
		user := currentUser(c)
		db := c.Get("__db").(*gorm.DB)
		tokenRequest := new(models.UserPushIn)
		if err := c.Bind(tokenRequest); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if tokenRequest.Token != "" {
			db.Where("user_account_id = ? and token = ?", user.ID, tokenRequest.Token).Delete(&models.UserPushToken{})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
	})

	g.POST("/delete-account", func(c echo.Context) error {
		user := currentUser(c)
		db := c.Get("__db").(*gorm.DB)
		now := time.Now()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.UserAccount{}).Where("id = ?", user.ID).
				Update("confirmed_delete_date", now).Error; err != nil {
				return err
			}
			return tx.Where("user_account_id = ?", user.ID).Delete(&models.UserPushToken{}).Error
		})
		if err != nil {
			zap.S().Errorf("[Profile: %d] delete account: %v", user.ID, err)
			return echo.ErrInternalServerError
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "account scheduled for deletion"})
	})
}
