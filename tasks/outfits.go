package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wardrobeapi/languageutil"
	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/outfits"
	"wardrobeapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	fallbackConfidence = 0.7
	fallbackStyleNotes = "Layer thoughtfully and keep every piece in the same formality."
)

// generationWeather rebuilds the weather the request was made with.
func generationWeather(g models.OutfitGeneration) *outfits.WeatherSnapshot {
	if g.Temperature == nil {
		return nil
	}
	w := &outfits.WeatherSnapshot{Temperature: *g.Temperature}
	if g.Condition != nil {
		w.Condition = *g.Condition
	}
	if g.City != nil {
		w.City = *g.City
	}
	return w
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FallbackOutfits ranks the wardrobe locally when the stylist answer is unusable.
func FallbackOutfits(clothes []models.Clothing, weather *outfits.WeatherSnapshot, prefs *models.UserPreferences) []models.GeneratedOutfit {
	suggestions := services.RankWardrobe(clothes, weather, prefs)
	result := make([]models.GeneratedOutfit, 0, len(suggestions))
	for _, s := range suggestions {
		result = append(result, models.GeneratedOutfit{
			Name:       languageutil.OutfitName(s.Items),
			ItemIDs:    services.SuggestionClothingIDs(s),
			Reasoning:  languageutil.Sentence(s.Reasoning),
			StyleNotes: fallbackStyleNotes,
			Confidence: fallbackConfidence,
		})
	}
	return result
}

// HandleOutfitGenerationTask asks the stylist for outfits and falls back to
// the local engine when the answer cannot be used.
func (h *Handler) HandleOutfitGenerationTask(ctx context.Context, t *asynq.Task) error {
	var payload OutfitGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("bad payload %q: %w", t.Payload(), asynq.SkipRetry)
	}
	start := time.Now()
	log := zap.S().With("generation_id", payload.GenerationID)

	var generation models.OutfitGeneration
	res := h.DB.First(&generation, payload.GenerationID)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		log.Warnf("[Generation: %v] Request is gone", payload.GenerationID)
		return nil
	}
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving generation %v: %w", payload.GenerationID, res.Error))
		return res.Error
	}
	if generation.Status != models.GenerationPending {
		log.Infof("[Generation: %v] Already %s", generation.ID, generation.Status)
		return nil
	}

	var company models.Company
	if err := h.DB.First(&company, generation.CompanyID).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Generation: %v] company %v: %w", generation.ID, generation.CompanyID, err))
		return err
	}
	clothes, err := services.LoadWardrobe(h.DB, generation.UserAccountID)
	if err != nil {
		return err
	}
	prefs, err := services.LoadPreferences(h.DB, generation.UserAccountID)
	if err != nil {
		return err
	}
	if len(clothes) < 2 {
		failed, _ := saveGenerationFail(h.DB, generation, "Add at least two items to your wardrobe first", false)
		return retryResult(failed, fmt.Errorf("[Generation: %v] wardrobe has %d items", generation.ID, len(clothes)))
	}

	weather := generationWeather(generation)
	model := services.ModelForCompany(company, h.Model)
	modelString := model.String()

	prompt := services.BuildOutfitPrompt(services.OutfitPrompt{
		Occasion:        generation.Occasion,
		Weather:         weather,
		Style:           deref(generation.Style),
		Colors:          deref(generation.Colors),
		ComfortLevel:    deref(generation.ComfortLevel),
		AdditionalNotes: deref(generation.AdditionalNotes),
	}, clothes)

	known := make(map[uint]bool, len(clothes))
	for _, c := range clothes {
		known[c.ID] = true
	}

	var (
		generated []models.GeneratedOutfit
		tips      string
		fallback  bool
	)
	llmResponse, err := h.LLM.SuggestOutfits(ctx, prompt, models.Language(company.Language), model)
	switch {
	case err != nil && generation.GenerationRetryTimes+1 < models.MaxProcessRetries:
		failed, _ := saveGenerationFail(h.DB, generation, "Stylist is busy, retrying", true)
		sentry.CaptureException(fmt.Errorf("[Generation: %v] suggest with %s: %w", generation.ID, modelString, err))
		return retryResult(failed, err)
	case err != nil:
		log.Warnf("[Generation: %v] Stylist unavailable after %d attempts, using engine: %v", generation.ID, generation.GenerationRetryTimes+1, err)
		generation.GenerationRetryTimes++
		fallback = true
		tips = fmt.Sprintf("For %s, focus on comfort and appropriateness for the weather.", generation.Occasion)
	default:
		generated, tips, err = services.ParseAIOutfits(llmResponse.Response, known)
		if err != nil {
			log.Warnf("[Generation: %v] Error on parsing %s AI json: %v", generation.ID, modelString, err)
			fallback = true
			tips = fmt.Sprintf("For %s, focus on comfort and appropriateness for the weather.", generation.Occasion)
		} else if len(generated) == 0 {
			log.Warnf("[Generation: %v] No valid outfits from AI, using engine", generation.ID)
			fallback = true
			tips = fmt.Sprintf("Here are some outfit suggestions based on your %s occasion.", generation.Occasion)
		}
		generation.LLMModel = &modelString
		generation.LLMInputTokenCount = &llmResponse.InputTokenCount
		generation.LLMOutputTokenCount = &llmResponse.OutputTokenCount
		generation.LLMTotalTokenCount = &llmResponse.TotalTokenCount
		generation.LLMThoughtsTokenCount = &llmResponse.ThoughtsTokenCount
	}

	source := "ai"
	if fallback {
		source = "fallback"
		generated = FallbackOutfits(clothes, weather, prefs)
	}

	resultJSON, err := json.Marshal(generated)
	if err != nil {
		return err
	}
	duration := time.Since(start).Seconds()
	generation.Result = services.StrPointer(string(resultJSON))
	generation.GeneralTips = services.StrPointer(languageutil.Sentence(tips))
	generation.UsedFallback = fallback
	generation.Status = models.GenerationCompleted
	generation.GenerationErrorMessage = nil
	generation.Duration = &duration

	if tx := h.DB.Omit("UserAccount").Save(&generation); tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving generation %v: %w", generation.ID, tx.Error))
		return tx.Error
	}
	metrics.SuggestionsServed.WithLabelValues(source).Add(float64(len(generated)))
	log.Infof("[Generation: %v] %d outfits via %s in %.1fs", generation.ID, len(generated), source, duration)

	if h.Push != nil {
		h.Push.Notify(ctx, generation.UserAccountID, "Your outfits are ready",
			fmt.Sprintf("%d looks for %s", len(generated), generation.Occasion),
			map[string]string{"generation_id": fmt.Sprintf("%d", generation.ID), "type": "ai_outfits_ready"})
	}
	return nil
}
