package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/telegram"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const (
	TypeAnalyzeClothing = "wardrobe:analyze_clothing"
	TypeAIOutfits       = "wardrobe:ai_outfits"
	TypeDailyOutfit     = "wardrobe:daily_outfit"

	QueueGenerate = "generate"
)

type ClothingAnalysisPayload struct {
	ClothingID uint `json:"clothing_id"`
}

type OutfitGenerationPayload struct {
	GenerationID uint `json:"generation_id"`
}

// NewClient initializes an asynq client for enqueuing tasks
func NewClient(redisAddr, password string) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: password})
}

// EnqueueOptions are used for every user triggered task.
func EnqueueOptions() []asynq.Option {
	return []asynq.Option{asynq.MaxRetry(models.MaxProcessRetries), asynq.Queue(QueueGenerate)}
}

func NewClothingAnalysisTask(clothingID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ClothingAnalysisPayload{ClothingID: clothingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAnalyzeClothing, payload), nil
}

func NewOutfitGenerationTask(generationID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(OutfitGenerationPayload{GenerationID: generationID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAIOutfits, payload), nil
}

func NewDailyOutfitTask() *asynq.Task {
	return asynq.NewTask(TypeDailyOutfit, nil)
}

// Handler carries what the worker's task handlers need.
type Handler struct {
	DB      *gorm.DB
	LLM     services.LLMProcessor
	AWS     services.AWSServiceProvider
	Push    services.PushNotifier
	Weather services.WeatherProvider
	Admin   telegram.AdminNotifier
	Bucket  string
	Model   services.LLMModelName

	// pause between daily pushes
	DailyPause time.Duration
}

func (h *Handler) admin() telegram.AdminNotifier {
	if h.Admin == nil {
		return telegram.NopNotifier{}
	}
	return h.Admin
}

// Register mounts every task type on the mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeAnalyzeClothing, observed(TypeAnalyzeClothing, h.HandleClothingAnalysisTask))
	mux.HandleFunc(TypeAIOutfits, observed(TypeAIOutfits, h.HandleOutfitGenerationTask))
	mux.HandleFunc(TypeDailyOutfit, observed(TypeDailyOutfit, h.HandleDailyOutfitTask))
}

func observed(taskType string, fn func(context.Context, *asynq.Task) error) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		err := fn(ctx, t)
		metrics.TaskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		status := "ok"
		switch {
		case errors.Is(err, asynq.SkipRetry):
			status = "failed"
		case err != nil:
			status = "retry"
		}
		metrics.TaskOutcomes.WithLabelValues(taskType, status).Inc()
		return err
	}
}

// saveClothingProcessingFail records the attempt. The row is marked failed once
// retries are exhausted or when retrying cannot help.
func saveClothingProcessingFail(db *gorm.DB, clothing models.Clothing, msg string, shouldRetry bool) (failed bool, err error) {
	clothing.ProcessRetryTimes = clothing.ProcessRetryTimes + 1
	clothing.ProcessErrorMessage = &msg
	if !shouldRetry || clothing.ProcessRetryTimes >= models.MaxProcessRetries {
		clothing.ProcessingStatus = models.ProcessingFailed
		failed = true
	}
	tx := db.Omit("Owner", "Company").Save(&clothing)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Clothing %v] Error on saving clothing for failed status", clothing.ID))
		return failed, tx.Error
	}
	return failed, nil
}

func saveGenerationFail(db *gorm.DB, generation models.OutfitGeneration, msg string, shouldRetry bool) (failed bool, err error) {
	generation.GenerationRetryTimes = generation.GenerationRetryTimes + 1
	generation.GenerationErrorMessage = &msg
	if !shouldRetry || generation.GenerationRetryTimes >= models.MaxProcessRetries {
		generation.Status = models.GenerationFailed
		failed = true
	}
	tx := db.Omit("UserAccount").Save(&generation)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Generation %v] Error on saving generation for failed status", generation.ID))
		return failed, tx.Error
	}
	return failed, nil
}

// retryResult turns a recorded failure into the error asynq should see.
func retryResult(failed bool, cause error) error {
	if failed {
		return fmt.Errorf("%v: %w", cause, asynq.SkipRetry)
	}
	return cause
}
