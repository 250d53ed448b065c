package main

import (
	"context"
	"time"

	"wardrobeapi/dbhelper"
	"wardrobeapi/logging"
	"wardrobeapi/services"
	"wardrobeapi/tasks"
	"wardrobeapi/telegram"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     services.GetEnv("ASYNC_BROKER_ADDRESS", "127.0.0.1:6379"),
		Password: services.GetEnv("ASYNC_BROKER_PASSWORD", ""),
	}
}

func runScheduler() {
	scheduler := asynq.NewScheduler(redisOpt(), &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})
	if err := tasks.RegisterSchedule(scheduler); err != nil {
		zap.S().Fatalf("[Scheduler] %v", err)
	}
	zap.S().Info("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		zap.S().Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	services.LoadConfig()
	logger := logging.New(services.GetEnv("LOG_LEVEL", "info"), services.GetEnv("LOG_FORMAT", "console"))
	defer logging.Install(logger)()
	defer logger.Sync()

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         services.GetEnv("SENTRY_DSN", ""),
		Environment: services.GetEnv("ENV", "local"),
		Release:     "wardrobeapi-worker@1.0.0",
	})
	if err != nil {
		zap.S().Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	srv := asynq.NewServer(
		redisOpt(),
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			tasks.QueueGenerate: 7,
		}},
	)
	awsService := &services.AWSService{}
	if err := awsService.InitPresignClient(context.Background()); err != nil {
		zap.S().Fatalf("[Queue] Failed to initialize AWS provider: S3: %v", err)
	}
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		zap.S().Fatalf("error initializing firebase app: %v", err)
	}
	weather, err := services.NewOpenMeteoService()
	if err != nil {
		zap.S().Fatalf("Failed to initialize weather service: %v", err)
	}

	db := dbhelper.SetupDB()
	handler := &tasks.Handler{
		DB:         db,
		LLM:        services.NewGoogleStylist(),
		AWS:        awsService,
		Push:       services.FirebaseNotifier{App: app, DB: db},
		Weather:    weather,
		Admin:      telegram.NewAdminNotifier(services.GetEnv("TG_TOKEN", ""), services.GetEnv("TG_ADMIN_CHAT_ID", "")),
		Bucket:     services.GetEnv("R2_BUCKET_NAME", ""),
		Model:      services.ParseLLMModelName(services.GetEnv("LLM_MODEL", services.Flash25.String())),
		DailyPause: 50 * time.Millisecond,
	}
	mux := asynq.NewServeMux()
	handler.Register(mux)

	go runScheduler()
	if err := srv.Run(mux); err != nil {
		zap.S().Fatal(err)
	}
}
