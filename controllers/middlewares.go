package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"wardrobeapi/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserMiddleware loads the token's user with their wardrobe account.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		db := c.Get("__db").(*gorm.DB)
		userRaw := c.Get("user")
		if userRaw == nil {
			return echo.ErrUnauthorized
		}
		user := userRaw.(*jwt.Token)
		claims := user.Claims.(jwt.MapClaims)
		userId := claims["sub"]
		if userId == nil || userId == "" {
			zap.S().Warn("Error while getting the token information!")
			return echo.ErrUnauthorized
		}

		var currentUser models.UserAccount
		result := db.Preload("Memberships.Company").Where("id = ?", userId).Take(&currentUser)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return echo.ErrUnauthorized
		}
		if result.Error != nil {
			zap.S().Errorf("Failed to fetch user %v: %v", userId, result.Error)
			return echo.ErrInternalServerError
		}
		if currentUser.Banned || currentUser.ConfirmedDeleteDate != nil {
			return echo.ErrForbidden
		}
		if len(currentUser.Memberships) == 0 {
			// just indicator..
			return echo.NewHTTPError(http.StatusLocked)
		}
		c.Set("currentUser", currentUser)
		return next(c)
	}
}

func currentUser(c echo.Context) models.UserAccount {
	return c.Get("currentUser").(models.UserAccount)
}

func currentCompany(c echo.Context) models.Company {
	return currentUser(c).Memberships[0].Company
}

// RequestLogger writes one zap line per request.
func RequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		path := c.Request().URL.Path
		if strings.HasPrefix(path, "/metrics") || path == "/health" {
			return nil
		}
		zap.L().Info("request",
			zap.String("method", c.Request().Method),
			zap.String("path", path),
			zap.Int("status", c.Response().Status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.RealIP()),
		)
		return nil
	}
}
