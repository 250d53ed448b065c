package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/telegram"

	apple "github.com/Timothylock/go-signin-with-apple/apple"
	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultWardrobeName = "My Wardrobe"
	defaultAvatarURL    = "https://pub-df730af6a36c46a58d6d948f149dae31.r2.dev/user-circle.png"
	accessTokenHours    = 72
)

var errAccountBlocked = errors.New("account is blocked")

type AuthController struct {
	Google services.GoogleServiceProvider
	Admin  telegram.AdminNotifier
	// AppleVerifier is replaced in tests.
	AppleVerifier func(ctx context.Context, code string) (appleIdentity, error)
}

type appleIdentity struct {
	ID    string
	Email string
}

// signInIdentity is what a provider tells us about the person signing in.
type signInIdentity struct {
	Provider  string
	GoogleID  string
	AppleID   string
	Email     string
	Name      string
	AvatarURL string
	Platform  string
	UTMSource string
}

func (m *AuthController) AuthRoutes(g *echo.Group) {
	g.POST("/google", func(c echo.Context) error {
		googleCreds := new(models.GoogleAuthSignIn)
		if err := c.Bind(googleCreds); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if !models.ValidatePlatformRaw(googleCreds.Platform) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Please provide proper platform parameter"})
		}
		if err := c.Validate(googleCreds); err != nil {
			return err
		}

		payload, err := m.Google.ValidateIdToken(c.Request().Context(), googleCreds.IdToken, services.GetEnv("GOOGLE_CLIENT_ID", ""))
		if err != nil {
			zap.S().Warnf("[Google signin] token rejected: %v", err)
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		googleID, ok := payload.Claims["sub"].(string)
		if !ok || googleID == "" {
			sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data %s", payload.Claims))
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		googleEmail, ok := payload.Claims["email"].(string)
		if !ok || googleEmail == "" {
			sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data email %s", payload.Claims))
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials"})
		}
		pictureURL, _ := payload.Claims["picture"].(string)
		googleName, _ := payload.Claims["name"].(string)

		return m.signIn(c, signInIdentity{
			Provider:  "google",
			GoogleID:  googleID,
			Email:     googleEmail,
			Name:      googleName,
			AvatarURL: pictureURL,
			Platform:  googleCreds.Platform,
			UTMSource: googleCreds.UTMSource,
		})
	})

	g.POST("/apple", func(c echo.Context) error {
		var req models.AppleAuthRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
		verify := m.AppleVerifier
		if verify == nil {
			verify = verifyAppleCode
		}
		identity, err := verify(c.Request().Context(), req.AuthorizationCode)
		if err != nil {
			zap.S().Warnf("[Apple signin] %v", err)
			return c.JSON(http.StatusForbidden, map[string]interface{}{"message": "Couldn't verify credentials through Apple"})
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = identity.Email
		}
		return m.signIn(c, signInIdentity{
			Provider:  "apple",
			AppleID:   identity.ID,
			Email:     identity.Email,
			Name:      name,
			AvatarURL: defaultAvatarURL,
			Platform:  req.Platform,
			UTMSource: req.UTMSource,
		})
	})

	g.POST("/refresh-token", func(c echo.Context) error {
		type tokenReqBody struct {
			RefreshToken string `json:"refresh_token"`
		}
		tokenReq := new(tokenReqBody)
		if err := c.Bind(tokenReq); err != nil || tokenReq.RefreshToken == "" {
			return echo.ErrBadRequest
		}
		token, err := jwt.Parse(tokenReq.RefreshToken, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(services.GetEnv("JWT_SECRET", "")), nil
		})
		if err != nil {
			return echo.ErrBadRequest
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return echo.ErrBadRequest
		}
		sub, ok := claims["sub"].(string)
		if !ok {
			return echo.ErrBadRequest
		}
		userID, err := strconv.Atoi(sub)
		if err != nil || userID < 1 {
			return echo.ErrBadRequest
		}

		db := c.Get("__db").(*gorm.DB)
		var user models.UserAccount
		result := db.First(&user, userID)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return echo.ErrForbidden
		}
		if result.Error != nil {
			zap.S().Errorf("Error getting user %d while refreshing token: %v", userID, result.Error)
			return echo.ErrInternalServerError
		}
		if user.Banned || user.ConfirmedDeleteDate != nil {
			return echo.ErrUnauthorized
		}
		rt, err := GenerateRefreshToken(sub)
		if err != nil {
			zap.S().Errorf("Error refreshing token: %v", err)
			return echo.ErrInternalServerError
		}
		return c.JSON(http.StatusOK, echo.Map{
			"access_token":  GenerateUserToken(sub, accessTokenHours),
			"refresh_token": rt,
		})
	})
}

// signIn finds or creates the account, makes sure it owns a wardrobe and
// hands out a token pair.
func (m *AuthController) signIn(c echo.Context, identity signInIdentity) error {
	db := c.Get("__db").(*gorm.DB)
	user, created, err := findOrCreateUser(db, identity, c.RealIP())
	if errors.Is(err, errAccountBlocked) {
		return echo.ErrForbidden
	}
	if err != nil {
		zap.S().Errorf("[%s signin] %s: %v", identity.Provider, identity.Email, err)
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Sorry, something wrong happened, please try again!"})
	}

	company, err := ensureWardrobe(db, user)
	if err != nil {
		zap.S().Errorf("[%s signin] wardrobe for %d: %v", identity.Provider, user.ID, err)
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Sorry, something wrong happened, please try again!"})
	}
	if created {
		zap.S().Infof("User onboarding finished %s: %s", identity.Provider, user.Email)
		m.Admin.Alert(fmt.Sprintf("New user via %s: %s (%s), platform %s, utm %q", identity.Provider, user.Name, user.Email, user.Platform, identity.UTMSource))
	}

	refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
	if err != nil {
		zap.S().Errorf("Error refreshing token: %v", err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, models.SignInOut{
		Email:        user.Email,
		Id:           fmt.Sprint(user.ID),
		CompanyId:    fmt.Sprint(company.ID),
		New:          created,
		Name:         user.Name,
		Avatar:       user.AvatarURL,
		Company:      models.NewCompanyInfoOut(company),
		AccessToken:  GenerateUserToken(fmt.Sprint(user.ID), accessTokenHours),
		RefreshToken: refreshToken,
	})
}

func findOrCreateUser(db *gorm.DB, identity signInIdentity, ip string) (*models.UserAccount, bool, error) {
	var user models.UserAccount
	query := db.Model(&models.UserAccount{})
	switch {
	case identity.GoogleID != "":
		query = query.Where("google_id = ?", identity.GoogleID)
	case identity.AppleID != "":
		query = query.Where("apple_id = ?", identity.AppleID)
	}
	if identity.Email != "" {
		query = query.Or("email = ?", identity.Email)
	}
	r := query.Limit(1).Find(&user)
	if r.Error != nil {
		return nil, false, r.Error
	}

	if r.RowsAffected > 0 {
		if user.Banned || user.ConfirmedDeleteDate != nil {
			return nil, false, errAccountBlocked
		}
		if identity.GoogleID != "" {
			user.GoogleID = identity.GoogleID
		}
		if identity.AppleID != "" {
			user.AppleID = identity.AppleID
		}
		if user.Name == "" {
			user.Name = identity.Name
		}
		if user.AvatarURL == "" || (identity.Provider == "google" && identity.AvatarURL != "") {
			user.AvatarURL = identity.AvatarURL
		}
		user.LastIp = ip
		user.Platform = models.Platform(identity.Platform)
		if err := db.Save(&user).Error; err != nil {
			return nil, false, err
		}
		return &user, false, nil
	}

	if identity.Email == "" {
		return nil, false, errors.New("first sign in without an email")
	}
	user = models.UserAccount{
		Name:      identity.Name,
		Email:     identity.Email,
		GoogleID:  identity.GoogleID,
		AppleID:   identity.AppleID,
		Platform:  models.Platform(identity.Platform),
		LastIp:    ip,
		Status:    "FINISHED_AUTH",
		UTMSource: identity.UTMSource,
		AvatarURL: identity.AvatarURL,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// ensureWardrobe returns the user's wardrobe account, creating a free one
// with an owner membership the first time.
func ensureWardrobe(db *gorm.DB, user *models.UserAccount) (models.Company, error) {
	var membership models.UserCompanyRole
	r := db.Joins("Company").Where("user_account_id = ?", user.ID).Limit(1).Find(&membership)
	if r.Error != nil {
		return models.Company{}, r.Error
	}
	if r.RowsAffected > 0 {
		return membership.Company, nil
	}

	company := models.Company{
		Name:         defaultWardrobeName,
		OwnerID:      user.ID,
		Subscription: models.Free,
		Language:     string(models.EN),
		Active:       true,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner").Create(&company).Error; err != nil {
			return err
		}
		return tx.Omit("UserAccount", "Company").Create(&models.UserCompanyRole{
			CompanyID:     company.ID,
			UserAccountID: user.ID,
			Active:        true,
			Role:          models.OWNER,
		}).Error
	})
	return company, err
}

func verifyAppleCode(ctx context.Context, code string) (appleIdentity, error) {
	teamID := services.GetEnv("APPLE_TEAM_ID", "")
	keyID := services.GetEnv("APPLE_KEY_ID", "")
	clientID := services.GetEnv("APPLE_CLIENT_ID", "")

	secret, err := services.DecodeBase64EnvPrivateKey("APPLE_SIGNIN_PKEY_BASE64")
	if err != nil {
		return appleIdentity{}, err
	}
	secret, err = apple.GenerateClientSecret(secret, teamID, clientID, keyID)
	if err != nil {
		return appleIdentity{}, fmt.Errorf("client secret: %w", err)
	}

	var resp apple.ValidationResponse
	err = apple.New().VerifyAppToken(ctx, apple.AppValidationTokenRequest{
		ClientID:     clientID,
		ClientSecret: secret,
		Code:         code,
	}, &resp)
	if err != nil {
		return appleIdentity{}, fmt.Errorf("verifying: %w", err)
	}
	if resp.Error != "" {
		return appleIdentity{}, fmt.Errorf("apple returned an error: %s - %s", resp.Error, resp.ErrorDescription)
	}

	unique, err := apple.GetUniqueID(resp.IDToken)
	if err != nil {
		return appleIdentity{}, fmt.Errorf("unique id: %w", err)
	}
	claim, err := apple.GetClaims(resp.IDToken)
	if err != nil {
		return appleIdentity{}, fmt.Errorf("claims: %w", err)
	}
	email, _ := (*claim)["email"].(string)
	return appleIdentity{ID: unique, Email: email}, nil
}
