package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"wardrobeapi/services"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func BoolPointer(b bool) *bool {
	return &b
}

func StrPointer(b string) *string {
	return &b
}

func UIntToStr(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func GenerateUserToken(userPk string, hours uint64) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * time.Duration(hours))),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(services.GetEnv("JWT_SECRET", "")))
	if err != nil {
		zap.S().Errorf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func GenerateRefreshToken(userPk string) (string, error) {
	refreshToken := jwt.New(jwt.SigningMethodHS256)
	rtClaims := refreshToken.Claims.(jwt.MapClaims)
	rtClaims["sub"] = userPk
	rtClaims["exp"] = time.Now().Add(time.Hour * 24 * 30 * 12).Unix()
	return refreshToken.SignedString([]byte(services.GetEnv("JWT_SECRET", "")))
}

// pathID reads a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	var id uint
	if err := echo.PathParamsBinder(c).Uint(name, &id).BindError(); err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// bindAndValidate writes the 400 response itself when ok is false.
func bindAndValidate(c echo.Context, in interface{}) (bool, error) {
	if err := c.Bind(in); err != nil {
		return false, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(in); err != nil {
		return false, c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return true, nil
}

// consumeQuota returns an error response when the daily allowance is used up.
func consumeQuota(c echo.Context, quota *services.QuotaService, kind string, accountID uint, limit *int64) (bool, error) {
	if quota == nil || limit == nil {
		return true, nil
	}
	_, err := quota.Consume(c.Request().Context(), kind, accountID, limit)
	if errors.Is(err, services.ErrQuotaExceeded) {
		return false, c.JSON(http.StatusTooManyRequests, map[string]interface{}{
			"error": "Daily limit reached, upgrade to Pro for more",
			"limit": *limit,
		})
	}
	if err != nil {
		// redis trouble should not block users
		zap.S().Warnf("[Quota] %s for %d: %v", kind, accountID, err)
		sentry.CaptureException(err)
	}
	return true, nil
}

func releaseQuota(ctx context.Context, quota *services.QuotaService, kind string, accountID uint) {
	if quota == nil {
		return
	}
	if err := quota.Release(ctx, kind, accountID); err != nil {
		zap.S().Warnf("[Quota] release %s for %d: %v", kind, accountID, err)
	}
}

func enqueue(c echo.Context, task *asynq.Task, tag string) error {
	asynqClient, ok := c.Get("__asynqclient").(TaskEnqueuer)
	if !ok || asynqClient == nil {
		return errors.New("task queue is not configured")
	}
	info, err := asynqClient.Enqueue(task, tasks.EnqueueOptions()...)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Queue] %s: %w", tag, err))
		return err
	}
	zap.S().Infof("[Queue] %s task submitted, Task ID %v", tag, info.ID)
	return nil
}
