package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/telegram"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rcTimeLayout = "2006-01-02T15:04:05Z"

type WebhooksController struct {
	Google services.GoogleServiceProvider
	Push   services.PushNotifier
	Admin  telegram.AdminNotifier
	// SyncDelay gives the store time to settle before the subscriber is read back.
	SyncDelay time.Duration
}

type rcEventBody struct {
	Event struct {
		Type              string `json:"type"`
		AppUserID         string `json:"app_user_id"`
		OriginalAppUserID string `json:"original_app_user_id"`
		PeriodType        string `json:"period_type"`
		ExpirationReason  string `json:"expiration_reason"`
		CancelReason      string `json:"cancel_reason"`
	} `json:"event"`
}

type rcSubscriberBody struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate       *string `json:"expires_date"`
			ProductIdentifier string  `json:"product_identifier"`
		} `json:"entitlements"`
	} `json:"subscriber"`
}

// proExpiry returns the expiry of the pro entitlement, if the subscriber has one.
func (s rcSubscriberBody) proExpiry() (*time.Time, bool) {
	for name, entitlement := range s.Subscriber.Entitlements {
		if !strings.EqualFold(name, string(models.Pro)) {
			continue
		}
		if entitlement.ExpiresDate == nil {
			// lifetime purchase
			return nil, true
		}
		t, err := time.Parse(rcTimeLayout, *entitlement.ExpiresDate)
		if err != nil {
			zap.S().Warnf("[Subscription] bad expires_date %q: %v", *entitlement.ExpiresDate, err)
			return nil, false
		}
		return &t, true
	}
	return nil, false
}

func (wc *WebhooksController) notify(c echo.Context, userID uint, title, message string) {
	if wc.Push == nil {
		return
	}
	wc.Push.Notify(c.Request().Context(), userID, title, message, map[string]string{"type": "subscription"})
}

// setPlan moves the user and every wardrobe they own to the plan and returns
// the wardrobe names for the admin message.
func setPlan(db *gorm.DB, user *models.UserAccount, plan models.Subscription, expires *time.Time) (string, error) {
	planString := string(plan)
	user.Subscription = &planString
	if expires != nil {
		user.ExpirationDate = expires
	}
	if err := db.Omit("Memberships").Save(user).Error; err != nil {
		return "", err
	}
	var companies []models.Company
	if err := db.Where("owner_id = ?", user.ID).Find(&companies).Error; err != nil {
		return "", err
	}
	names := make([]string, 0, len(companies))
	for _, company := range companies {
		names = append(names, company.Name)
	}
	err := db.Model(&models.Company{}).Where("owner_id = ?", user.ID).Update("subscription", plan).Error
	return strings.Join(names, ","), err
}

func (wc *WebhooksController) SetupRoutes(g *echo.Group) {
	g.POST("/rc-subscription-webhooks", func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer "+services.GetEnv("RC_WEBHOOK_TOKEN", "") {
			zap.S().Warnf("[Malicious] invalid webhook authorization, IP: %s, User agent: %s", c.RealIP(), c.Request().Header.Get("User-Agent"))
			return echo.ErrUnauthorized
		}
		db := c.Get("__db").(*gorm.DB)

		var body rcEventBody
		if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
			zap.S().Errorf("[Subscription] error parsing event json: %v", err)
			return echo.ErrBadRequest
		}
		event := body.Event
		if event.Type == "TRANSFER" {
			return c.JSON(http.StatusOK, echo.Map{"message": "OK TRANSFER"})
		}

		appUserID := event.AppUserID
		if strings.Contains(appUserID, "$RCAnonymousID") {
			appUserID = event.OriginalAppUserID
		}
		userID, err := strconv.ParseUint(appUserID, 10, 32)
		if err != nil {
			zap.S().Warnf("[Subscription] unknown user %q for %s", appUserID, event.Type)
			wc.Admin.Alert(fmt.Sprintf("Unknown user %s event: %s", appUserID, event.Type))
			return c.JSON(http.StatusOK, echo.Map{"message": "Error unknown user"})
		}

		var user models.UserAccount
		if err := db.First(&user, userID).Error; err != nil {
			zap.S().Errorf("[Subscription] cannot load user %d: %v", userID, err)
			return echo.ErrInternalServerError
		}

		switch event.Type {
		case "EXPIRATION":
			wardrobes, err := setPlan(db, &user, models.Free, nil)
			if err != nil {
				sentry.CaptureException(err)
				return echo.ErrInternalServerError
			}
			wc.Admin.Alert(fmt.Sprintf("🛑 %s(%s) %s reason %s", user.Name, wardrobes, event.Type, event.ExpirationReason))
			wc.notify(c, user.ID, "Subscription expired", "Your Pro wardrobe has ended. Subscribe again to keep unlimited clothes and AI stylist looks!")
			return c.JSON(http.StatusOK, echo.Map{"message": "expire ok"})
		case "CANCELLATION":
			// access stays until EXPIRATION arrives
			wc.Admin.Alert(fmt.Sprintf("🛑 %s %s reason %s", user.Name, event.Type, event.CancelReason))
			if event.CancelReason == "BILLING_ERROR" {
				wc.notify(c, user.ID, "Payment error", "Please update your payment to keep your subscription active!")
			}
			return c.JSON(http.StatusOK, echo.Map{"message": "cancel ok"})
		}

		if wc.SyncDelay > 0 {
			time.Sleep(wc.SyncDelay)
		}
		raw, err := wc.Google.GetUserSubscriptionStatus(c.Request().Context(), appUserID)
		if err != nil {
			zap.S().Errorf("[Subscription] status for %s: %v", appUserID, err)
			return echo.ErrInternalServerError
		}
		var subscriber rcSubscriberBody
		if err := json.Unmarshal(raw, &subscriber); err != nil {
			zap.S().Errorf("[Subscription] error decoding status of %s: %v", appUserID, err)
			return echo.ErrInternalServerError
		}

		expires, hasPro := subscriber.proExpiry()
		if hasPro && (expires == nil || expires.After(time.Now())) {
			wardrobes, err := setPlan(db, &user, models.Pro, expires)
			if err != nil {
				sentry.CaptureException(err)
				return echo.ErrInternalServerError
			}
			if event.Type == "INITIAL_PURCHASE" {
				wc.Admin.Alert(fmt.Sprintf("🎉⚡️🔥 %s(%s) subscription update: %s", user.Name, wardrobes, models.Pro))
			}
			if event.PeriodType == "PROMOTIONAL" && expires != nil {
				wc.notify(c, user.ID, "Promo activated 🎉", fmt.Sprintf("Your Pro subscription is now active until %s", expires.Format("2006-01-02")))
			}
			return c.JSON(http.StatusOK, echo.Map{"message": "Pro is active"})
		}

		zap.S().Infof("[Subscription] no active entitlement for %s, moving to free", appUserID)
		wardrobes, err := setPlan(db, &user, models.Free, expires)
		if err != nil {
			sentry.CaptureException(err)
			return echo.ErrInternalServerError
		}
		wc.Admin.Alert(fmt.Sprintf("⚠️ %s(%s) subscription updated: %s %s", user.Name, wardrobes, models.Free, event.Type))
		return c.JSON(http.StatusOK, echo.Map{"message": "OK"})
	})
}
