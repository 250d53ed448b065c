package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"wardrobeapi/models"
	"wardrobeapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleClothingAnalysisTask downloads the item photo, cleans it up and lets
// the stylist tag its attributes.
func (h *Handler) HandleClothingAnalysisTask(ctx context.Context, t *asynq.Task) error {
	var payload ClothingAnalysisPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("bad payload %q: %w", t.Payload(), asynq.SkipRetry)
	}
	log := zap.S().With("clothing_id", payload.ClothingID)
	log.Infof("[Clothing: %v] Start analysis", payload.ClothingID)

	var clothing models.Clothing
	res := h.DB.Joins("Company").First(&clothing, payload.ClothingID)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		log.Warnf("[Clothing: %v] Item is gone, nothing to analyze", payload.ClothingID)
		return nil
	}
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving clothing for analysis %v: %w", payload.ClothingID, res.Error))
		return res.Error
	}

	if clothing.ImageURL == nil || *clothing.ImageURL == "" {
		failed, _ := saveClothingProcessingFail(h.DB, clothing, "Photo is missing, please upload it again", false)
		return retryResult(failed, fmt.Errorf("[Clothing: %v] no photo to analyze", clothing.ID))
	}

	readURL, err := h.AWS.GetPresignedR2FileReadURL(ctx, h.Bucket, *clothing.ImageURL)
	if err != nil {
		failed, _ := saveClothingProcessingFail(h.DB, clothing, "Failed to read the photo, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] presign read: %w", clothing.ID, err))
		return retryResult(failed, err)
	}
	raw, err := services.ReadFileFromUrl(ctx, readURL)
	if err != nil {
		failed, _ := saveClothingProcessingFail(h.DB, clothing, "Failed to read the photo, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] download photo: %w", clothing.ID, err))
		return retryResult(failed, err)
	}
	log.Infof("[Clothing: %v] Downloaded photo size: %d bytes", clothing.ID, len(raw))

	photo, mimeType, err := services.PrepareClothingPhoto(raw)
	if err != nil {
		// formats imaging cannot decode (heic) still go to the model as is
		log.Warnf("[Clothing: %v] Photo not preprocessed: %v", clothing.ID, err)
		photo, mimeType = raw, http.DetectContentType(raw)
	} else {
		h.storeCleanedPhoto(ctx, &clothing, photo)
	}

	model := services.ModelForCompany(clothing.Company, h.Model)
	if clothing.Company.EnforcedLLMModel != nil {
		log.Infof("[Clothing: %v] [ENFORCE MODEL] Using enforced model: %s", clothing.ID, model)
	}
	modelString := model.String()

	llmResponse, err := h.LLM.AnalyzeClothing(ctx, photo, mimeType, model)
	if err != nil {
		failed, _ := saveClothingProcessingFail(h.DB, clothing, "Failed to analyze the photo, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] analyze with %s: %w", clothing.ID, modelString, err))
		return retryResult(failed, err)
	}

	analysis, err := services.ParseClothingAnalysis(llmResponse.Response)
	if err != nil {
		failed, _ := saveClothingProcessingFail(h.DB, clothing, "Could not recognise the item, try a clearer photo", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on parsing %s AI json %q: %w", clothing.ID, modelString, llmResponse.Response, err))
		return retryResult(failed, err)
	}
	log.Infof("[Clothing: %v] LLM Processed: IT: %d, OT: %d, TT: %d, TOT: %d",
		clothing.ID, llmResponse.InputTokenCount, llmResponse.OutputTokenCount, llmResponse.ThoughtsTokenCount, llmResponse.TotalTokenCount)

	analysis.ApplyTo(&clothing)
	clothing.ProcessingStatus = models.ProcessingCompleted
	clothing.ProcessErrorMessage = nil
	clothing.LLMModel = &modelString
	clothing.LLMInputTokenCount = &llmResponse.InputTokenCount
	clothing.LLMOutputTokenCount = &llmResponse.OutputTokenCount
	clothing.LLMTotalTokenCount = &llmResponse.TotalTokenCount

	if tx := h.DB.Omit("Owner", "Company").Save(&clothing); tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving analyzed clothing %v: %w", clothing.ID, tx.Error))
		return tx.Error
	}
	log.Infof("[Clothing: %v] Analysis finished: %s %s", clothing.ID, clothing.Color, clothing.Category)

	if h.Push != nil {
		h.Push.Notify(ctx, clothing.OwnerID, "Item analyzed",
			fmt.Sprintf("%s is tagged and ready for outfits", clothing.DisplayName()),
			map[string]string{"clothing_id": fmt.Sprintf("%d", clothing.ID), "type": "clothing_analyzed"})
	}
	return nil
}

// storeCleanedPhoto uploads the whitened photo next to the original and points
// the item at it. Upload problems keep the original photo.
func (h *Handler) storeCleanedPhoto(ctx context.Context, clothing *models.Clothing, photo []byte) {
	if strings.HasSuffix(*clothing.ImageURL, "-clean.jpg") {
		return
	}
	key := services.CleanedObjectKey(*clothing.ImageURL)
	uploadURL, err := h.AWS.PresignLink(ctx, h.Bucket, key)
	if err != nil {
		zap.S().Warnf("[Clothing: %v] presign cleaned photo: %v", clothing.ID, err)
		return
	}
	if _, status, err := h.AWS.UploadToPresignedURL(ctx, h.Bucket, uploadURL, photo); err != nil || status >= 300 {
		zap.S().Warnf("[Clothing: %v] upload cleaned photo: status %d: %v", clothing.ID, status, err)
		return
	}
	clothing.ImageURL = &key
}
