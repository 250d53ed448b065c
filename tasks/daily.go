package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wardrobeapi/languageutil"
	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// DailyOutfitCron runs the morning suggestion push.
const DailyOutfitCron = "0 7 * * *"

// RegisterSchedule adds the periodic tasks to the scheduler.
func RegisterSchedule(scheduler *asynq.Scheduler) error {
	entryID, err := scheduler.Register(DailyOutfitCron, NewDailyOutfitTask(), asynq.Queue(QueueGenerate), asynq.MaxRetry(0))
	if err != nil {
		return fmt.Errorf("register %s: %w", TypeDailyOutfit, err)
	}
	zap.S().Infof("[Scheduler] Registered %s with ID: %s, cron: %s", TypeDailyOutfit, entryID, DailyOutfitCron)
	return nil
}

var errNoSuggestion = errors.New("no outfit can be built from the wardrobe")

// HandleDailyOutfitTask pushes the best outfit for today's weather to every
// user who opted in and saved a city.
func (h *Handler) HandleDailyOutfitTask(ctx context.Context, t *asynq.Task) error {
	var subscribers []models.UserPreferences
	res := h.DB.Joins("UserAccount").
		Where("user_preferences.daily_suggestions = ? AND user_preferences.city IS NOT NULL AND user_preferences.city <> ''", true).
		Where(`"UserAccount".banned = ?`, false).
		Find(&subscribers)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Daily Outfit] Error fetching subscribers: %w", res.Error))
		return res.Error
	}
	zap.S().Infof("[Daily Outfit] Found %d users to send suggestions", len(subscribers))

	sent := 0
	for i, prefs := range subscribers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := h.sendDailyOutfit(ctx, prefs); err != nil {
			zap.S().Warnf("[Daily Outfit] Skipped user %d: %v", prefs.UserAccountID, err)
			if !errors.Is(err, errNoSuggestion) && !errors.Is(err, services.ErrCityNotFound) {
				sentry.CaptureException(fmt.Errorf("[Daily Outfit] user %d: %w", prefs.UserAccountID, err))
			}
			continue
		}
		sent++
		if h.DailyPause > 0 && i < len(subscribers)-1 {
			time.Sleep(h.DailyPause)
		}
	}
	zap.S().Infof("[Daily Outfit] Sent %d of %d", sent, len(subscribers))
	return nil
}

func (h *Handler) sendDailyOutfit(ctx context.Context, prefs models.UserPreferences) error {
	weather, err := h.Weather.ByCity(ctx, *prefs.City)
	if err != nil {
		return err
	}
	clothes, err := services.LoadWardrobe(h.DB, prefs.UserAccountID)
	if err != nil {
		return err
	}
	suggestions := services.RankWardrobe(clothes, weather.Snapshot(), &prefs)
	if len(suggestions) == 0 {
		return errNoSuggestion
	}
	top := suggestions[0]
	metrics.SuggestionsServed.WithLabelValues("engine").Inc()

	if h.Push == nil {
		return nil
	}
	ids := services.SuggestionClothingIDs(top)
	data := map[string]string{"type": "daily_outfit"}
	for i, id := range ids {
		data[fmt.Sprintf("clothing_id_%d", i)] = fmt.Sprintf("%d", id)
	}
	h.Push.Notify(ctx, prefs.UserAccountID, "Today's outfit",
		fmt.Sprintf("%.0f°C, %s in %s: %s", weather.Temperature, weather.Condition, weather.City, languageutil.OutfitName(top.Items)),
		data)
	return nil
}
