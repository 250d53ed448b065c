package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wardrobeapi/controllers"
	"wardrobeapi/dbhelper"
	"wardrobeapi/logging"
	"wardrobeapi/services"
	"wardrobeapi/tasks"
	"wardrobeapi/telegram"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

func main() {
	services.LoadConfig()
	logger := logging.New(services.GetEnv("LOG_LEVEL", "info"), services.GetEnv("LOG_FORMAT", "console"))
	defer logging.Install(logger)()
	defer logger.Sync()

	if services.GetEnv("RC_WEBHOOK_TOKEN", "") == "" {
		zap.S().Fatal("RC_WEBHOOK_TOKEN environment variable is not set!")
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              services.GetEnv("SENTRY_DSN", ""),
		Environment:      services.GetEnv("ENV", "local"),
		Release:          "wardrobeapi@1.0.0",
		TracesSampleRate: 1.0,
	})
	if err != nil {
		zap.S().Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)
	defer sentry.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := dbhelper.SetupDB()

	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		zap.S().Fatalf("error initializing firebase app: %v", err)
	}

	asynqClient := tasks.NewClient(services.GetEnv("ASYNC_BROKER_ADDRESS", "127.0.0.1:6379"), services.GetEnv("ASYNC_BROKER_PASSWORD", ""))
	defer asynqClient.Close()

	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	awsService := &services.AWSService{}
	urlCache, err := services.NewURLCacheService(awsService, bucketName)
	if err != nil {
		zap.S().Fatalf("Failed to initialize URL cache service: %v", err)
	}
	weather, err := services.NewOpenMeteoService()
	if err != nil {
		zap.S().Fatalf("Failed to initialize weather service: %v", err)
	}
	rdb := services.NewRedisClient()
	defer rdb.Close()

	tgToken := services.GetEnv("TG_TOKEN", "")
	admin := telegram.NewAdminNotifier(tgToken, services.GetEnv("TG_ADMIN_CHAT_ID", ""))

	e := controllers.SetupServer(controllers.Dependencies{
		DB:       db,
		Google:   services.GoogleService{},
		AWS:      awsService,
		URLCache: urlCache,
		Weather:  weather,
		Quota:    services.NewQuotaService(rdb),
		Push:     services.FirebaseNotifier{App: app, DB: db},
		Admin:    admin,
		Tasks:    asynqClient,
		Bucket:   bucketName,
	})

	if tgToken != "" {
		admins := strings.Split(services.GetEnv("TG_ADMINS", ""), ",")
		go func() {
			if err := telegram.RunAdminBot(ctx, tgToken, admins, db); err != nil {
				zap.S().Errorf("[Telegram] admin bot stopped: %v", err)
			}
		}()
	}

	go func() {
		addr := services.GetEnv("HTTP_ADDR", ":8083")
		zap.S().Infof("Listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("shutdown: %v", err)
	}
}
