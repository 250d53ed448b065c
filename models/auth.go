package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleAuthSignIn struct {
	IdToken   string `json:"idToken" validate:"required"`
	Platform  string `json:"platform" validate:"required,platform"`
	UTMSource string `json:"utm_source"`
}

type AppleAuthRequest struct {
	IdentityToken     string `json:"identity_token" validate:"required"`
	Platform          string `json:"platform" validate:"required,platform"`
	AuthorizationCode string `json:"authorization_code" validate:"required"`
	Name              string `json:"name"`
	UTMSource         string `json:"utm_source"`
}

type SignInOut struct {
	Email string `json:"email"`

	Id        string `json:"id"`
	CompanyId string `json:"company_id"`

	New          bool           `json:"new"`
	Name         string         `json:"name"`
	Avatar       string         `json:"avatar"`
	Company      CompanyInfoOut `json:"company"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
}

type CompanyInfoOut struct {
	Id           uint         `json:"id"`
	Name         string       `json:"name"`
	Subscription Subscription `json:"subscription"`
	Language     string       `json:"language"`
	Active       bool         `json:"active"`
	ClothesLimit *int64       `json:"clothes_limit"`
}

func NewCompanyInfoOut(c Company) CompanyInfoOut {
	return CompanyInfoOut{
		Id:           c.ID,
		Name:         c.Name,
		Subscription: c.Subscription,
		Language:     c.Language,
		Active:       c.Active,
		ClothesLimit: c.ClothesLimit(),
	}
}

type UserMeOut struct {
	Id                   string          `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	AvatarURL            string          `json:"avatar_url"`
	ReceiveNotifications bool            `json:"receive_notifications"`
	Company              CompanyInfoOut  `json:"company"`
	ClothesCount         int64           `json:"clothes_count"`
	OutfitsCount         int64           `json:"outfits_count"`
	Preferences          *PreferencesOut `json:"preferences"`
}

// WardrobeOverviewOut shows the plan limits next to what has been used.
type WardrobeOverviewOut struct {
	CompanyInfoOut
	ClothesCount               int64   `json:"clothes_count"`
	OutfitsCount               int64   `json:"outfits_count"`
	TodayAIOutfits             int64   `json:"today_ai_outfits"`
	DailyAIOutfitLimit         *int64  `json:"daily_ai_outfit_limit"`
	TodayClothingAnalyses      int64   `json:"today_clothing_analyses"`
	DailyClothingAnalysisLimit *int64  `json:"daily_clothing_analysis_limit"`
	LLMModel                   *string `json:"llm_model,omitempty"`
}

type WardrobeUpdateIn struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Language *string `json:"language" validate:"omitempty,language"`
	LLMModel *string `json:"llm_model" validate:"omitempty,max=50"`
}
