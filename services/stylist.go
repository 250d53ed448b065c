package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wardrobeapi/metrics"
	"wardrobeapi/models"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// LLMModelName is the Gemini model a request runs on.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

// ParseLLMModelName maps a stored model name back, defaulting to Flash25.
func ParseLLMModelName(name string) LLMModelName {
	for _, m := range []LLMModelName{Pro25, Flash25, FlashLite25, Flash20} {
		if m.String() == name {
			return m
		}
	}
	return Flash25
}

// ModelForCompany honours a model enforced on the account.
func ModelForCompany(company models.Company, fallback LLMModelName) LLMModelName {
	if company.EnforcedLLMModel != nil {
		return LLMModelName(*company.EnforcedLLMModel)
	}
	return fallback
}

func floatPointer(f float32) *float32 {
	return &f
}

var ErrEmptyAIResponse = errors.New("stylist: empty model response")

type LLMResponse struct {
	Response           string `json:"response"`
	InputTokenCount    int32  `json:"input_token_count"`
	Thoughts           string `json:"thoughts"`
	ThoughtsTokenCount int32  `json:"thoughts_token_count"`
	OutputTokenCount   int32  `json:"output_token_count"`
	TotalTokenCount    int32  `json:"total_token_count"`
	IsTest             bool   `json:"is_test"`
}

type LLMProcessor interface {
	// AnalyzeClothing tags a single garment photo and answers with the
	// attribute JSON read by ParseClothingAnalysis.
	AnalyzeClothing(ctx context.Context, image []byte, mimeType string, modelName LLMModelName) (*LLMResponse, error)
	// SuggestOutfits answers a BuildOutfitPrompt prompt with the JSON read by ParseAIOutfits.
	SuggestOutfits(ctx context.Context, prompt string, language models.Language, modelName LLMModelName) (*LLMResponse, error)
}

type GoogleStylist struct {
	APIKey string
}

func NewGoogleStylist() *GoogleStylist {
	return &GoogleStylist{APIKey: GetEnv("GOOGLE_API_KEY", "")}
}

func (g GoogleStylist) client(ctx context.Context) (*genai.Client, error) {
	if g.APIKey == "" {
		return nil, errors.New("stylist: GOOGLE_API_KEY is not configured")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
}

type ResponseWithThoughts struct {
	Thoughts string `json:"thoughts"`
	Text     string `json:"text"`
}

func GetFirstCandidateTextWithThoughts(result *genai.GenerateContentResponse) (*ResponseWithThoughts, error) {
	if result == nil {
		return nil, ErrEmptyAIResponse
	}
	var thinkingContent string
	for _, c := range result.Candidates {
		zap.S().Debugf("[Stylist] finish reason: %s %s", c.FinishReason, c.FinishMessage)

		for _, rating := range c.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content violation: blocked for %s", rating.Category)
			}
		}
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part.Thought && part.Text != "" {
				thinkingContent = part.Text
			}
		}
	}
	return &ResponseWithThoughts{
		Thoughts: thinkingContent,
		Text:     result.Text(),
	}, nil
}

// readResponse pulls text and token usage out of a generation result.
func readResponse(kind string, result *genai.GenerateContentResponse) (*LLMResponse, error) {
	if result.PromptFeedback != nil {
		zap.S().Warnf("[Stylist] %s prompt blocked: %s %s", kind, result.PromptFeedback.BlockReason, result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}

	text, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text.Text) == "" {
		return nil, ErrEmptyAIResponse
	}

	resp := &LLMResponse{
		Response: text.Text,
		Thoughts: text.Thoughts,
	}
	if usage := result.UsageMetadata; usage != nil {
		resp.InputTokenCount = usage.PromptTokenCount
		resp.ThoughtsTokenCount = usage.ThoughtsTokenCount
		resp.OutputTokenCount = usage.CandidatesTokenCount
		resp.TotalTokenCount = usage.TotalTokenCount
	}
	zap.S().Infow("[Stylist] usage", "kind", kind,
		"input", resp.InputTokenCount, "output", resp.OutputTokenCount,
		"thoughts", resp.ThoughtsTokenCount, "total", resp.TotalTokenCount)
	metrics.AITokens.WithLabelValues(kind).Add(float64(resp.TotalTokenCount))
	return resp, nil
}

func observe(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AIRequests.WithLabelValues(kind, status).Inc()
}

func stringSchema(enum ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: enum}
}

func stringListSchema(enum ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: stringSchema(enum...)}
}

var clothingAnalysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":                 {Type: genai.TypeString},
		"category":             stringSchema("top", "bottom", "dress", "jacket", "outerwear", "shoes", "accessory"),
		"color":                {Type: genai.TypeString},
		"warmth_level":         stringSchema("light", "medium", "heavy"),
		"tags":                 stringListSchema(),
		"occasion":             stringListSchema(),
		"style_aesthetic":      stringListSchema(),
		"season":               stringListSchema("Summer", "Winter", "Spring", "Fall", "All-Season"),
		"formality_level":      stringSchema("Very Casual", "Casual", "Smart Casual", "Business Casual", "Formal", "Black Tie"),
		"material_fabric":      {Type: genai.TypeString},
		"pattern_design":       {Type: genai.TypeString},
		"texture":              stringSchema("Smooth", "Rough", "Soft", "Structured", "Flowing"),
		"breathability":        stringSchema("Very Breathable", "Breathable", "Moderate", "Low", "Not Breathable"),
		"water_resistance":     stringSchema("None", "Water Repellent", "Water Resistant", "Waterproof"),
		"color_intensity":      stringSchema("Pastel", "Light", "Medium", "Dark", "Vibrant"),
		"layering_position":    stringSchema("Base Layer", "Mid Layer", "Outer Layer", "Statement Piece"),
		"condition_status":     stringSchema("Excellent", "Good", "Fair", "Needs Repair"),
		"compliment_frequency": stringSchema("Never", "Rarely", "Sometimes", "Often", "Always"),
		"versatility_score":    {Type: genai.TypeInteger},
		"brand":                {Type: genai.TypeString},
		"confidence":           {Type: genai.TypeNumber},
	},
	Required: []string{"category", "color", "warmth_level", "confidence"},
}

func (g GoogleStylist) AnalyzeClothing(ctx context.Context, image []byte, mimeType string, modelName LLMModelName) (resp *LLMResponse, err error) {
	defer func() { observe("analyze", err) }()

	client, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		{Text: clothingAnalysisPrompt},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  4096,
		Temperature:      floatPointer(0.1),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a fashion cataloguing assistant. Describe exactly one garment, the most prominent one in the photo, and answer only with JSON."},
			},
		},
		ResponseSchema: clothingAnalysisSchema,
	})
	if err != nil {
		zap.S().Errorf("[Stylist] analyze GenerateContent: %v", err)
		return nil, fmt.Errorf("stylist: failed to analyze clothing: %w", err)
	}
	return readResponse("analyze", result)
}

var outfitSuggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"outfits": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":        {Type: genai.TypeString},
					"item_ids":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeInteger}},
					"reasoning":   {Type: genai.TypeString},
					"style_notes": {Type: genai.TypeString},
					"confidence":  {Type: genai.TypeNumber},
				},
				Required: []string{"name", "item_ids", "reasoning"},
			},
		},
		"general_tips": {Type: genai.TypeString},
	},
	Required: []string{"outfits"},
}

func (g GoogleStylist) SuggestOutfits(ctx context.Context, prompt string, language models.Language, modelName LLMModelName) (resp *LLMResponse, err error) {
	defer func() { observe("outfits", err) }()

	client, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  8192,
		Temperature:      floatPointer(0.3),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: fmt.Sprintf("You are a professional fashion stylist. Use only item ids from the wardrobe you are given. Write names, reasoning, style notes and tips in %s.", language.PromptName())},
			},
		},
		ResponseSchema: outfitSuggestionSchema,
	})
	if err != nil {
		zap.S().Errorf("[Stylist] outfits GenerateContent: %v", err)
		return nil, fmt.Errorf("stylist: failed to suggest outfits: %w", err)
	}
	return readResponse("outfits", result)
}
