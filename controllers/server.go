package controllers

import (
	"context"
	"net/http"
	"time"

	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/telegram"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("language", models.ValidateLanguage)
	v.RegisterValidation("subscription", models.ValidateSubscription)
	for tag, fn := range models.AttributeValidators {
		v.RegisterValidation(tag, fn)
	}
	return &CustomValidator{validator: v}
}

// TaskEnqueuer is the part of the asynq client the handlers use.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dependencies are shared by every handler. Quota may be nil, which disables
// the daily AI limits.
type Dependencies struct {
	DB       *gorm.DB
	Google   services.GoogleServiceProvider
	AWS      services.AWSServiceProvider
	URLCache services.URLCacheServiceProvider
	Weather  services.WeatherProvider
	Quota    *services.QuotaService
	Push     services.PushNotifier
	Admin    telegram.AdminNotifier
	Tasks    TaskEnqueuer
	Bucket   string
}

func SetupServer(deps Dependencies) *echo.Echo {
	if err := deps.AWS.InitPresignClient(context.Background()); err != nil {
		zap.S().Fatalf("Failed to initialize AWS provider: S3: %v", err)
	}
	if deps.Admin == nil {
		deps.Admin = telegram.NopNotifier{}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", deps.DB)
			c.Set("__asynqclient", deps.Tasks)
			return next(c)
		}
	})

	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	e.Use(RequestLogger)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	if services.GetEnvBool("METRICS_ENABLED", true) {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	authGroup := e.Group("/auth")
	authController := AuthController{Google: deps.Google, Admin: deps.Admin}
	authController.AuthRoutes(authGroup)

	wardrobeGroup := e.Group("/wardrobe", echojwt.JWT([]byte(services.GetEnv("JWT_SECRET", ""))))
	wardrobeGroup.Use(UserMiddleware)

	profileController := ProfileController{}
	profileController.ProfileRoutes(wardrobeGroup.Group("/profile"))

	companyController := CompanyController{Quota: deps.Quota}
	companyController.CompanyRoutes(wardrobeGroup.Group("/account"))

	clothesController := ClothesController{
		AWSService: deps.AWS,
		URLCache:   deps.URLCache,
		Quota:      deps.Quota,
		Bucket:     deps.Bucket,
	}
	clothesController.ClothesRoutes(wardrobeGroup.Group("/clothes"))

	outfitsController := OutfitsController{
		AWSService: deps.AWS,
		URLCache:   deps.URLCache,
		Weather:    deps.Weather,
		Quota:      deps.Quota,
		Bucket:     deps.Bucket,
	}
	outfitsController.OutfitRoutes(wardrobeGroup.Group("/outfits"))

	preferencesController := PreferencesController{}
	preferencesController.PreferencesRoutes(wardrobeGroup.Group("/preferences"))

	weatherController := WeatherController{Weather: deps.Weather}
	weatherController.WeatherRoutes(wardrobeGroup.Group("/weather"))

	webhooksController := WebhooksController{
		Google:    deps.Google,
		Push:      deps.Push,
		Admin:     deps.Admin,
		SyncDelay: time.Duration(services.GetEnvInt64("RC_SYNC_DELAY_SECONDS", 4)) * time.Second,
	}
	webhooksController.SetupRoutes(e.Group("/webhooks"))

	return e
}
