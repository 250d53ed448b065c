package models

import "time"

type UserAccount struct {
	JsonModel
	Name   string `json:"name"`
	Email  string `json:"email" gorm:"unique"`
	Banned bool   `gorm:"default:false" json:"-"`
	LastIp string `json:"-"`
	//"STARTED_AUTH", "FINISHED_AUTH"
	Status              string            `json:"-"`
	GoogleID            string            `json:"-"`
	AppleID             string            `json:"-"`
	UTMSource           string            `json:"utm_source"`
	Platform            Platform          `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Memberships         []UserCompanyRole `gorm:"foreignKey:UserAccountID"`
	Subscription        *string           `json:"subscription"`
	ExpirationDate      *time.Time        `json:"-"`
	ConfirmedDeleteDate *time.Time        `json:"-"`
	// Notifications settings
	ReceiveNotifications bool `gorm:"default:true" json:"receive_notifications"`
	// sees LLM token usage in responses
	IsSuperadmin bool   `json:"is_superadmin"`
	AvatarURL    string `json:"avatar_url"`
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}

type UserSettingsIn struct {
	ReceiveNotifications *bool   `json:"receive_notifications"`
	Language             *string `json:"language" validate:"omitempty,language"`
}

type UserCompanyRole struct {
	JsonModel
	UserAccountID    uint
	UserAccount      UserAccount `json:"user_account"`
	Active           bool        `gorm:"default:false" json:"-"`
	Role             Role        `sql:"type:ENUM('OWNER', 'MEMBER')" json:"role"`
	InviteAcceptedAt *int64      `json:"invite_accepted_at"`
	CompanyID        uint
	Company          Company `json:"company"`
}

// Company is the wardrobe account a user signs into. Plans and limits live here.
type Company struct {
	JsonModel
	Name                          string            `json:"name"`
	Owner                         UserAccount       `json:"-"`
	OwnerID                       uint              `json:"-"`
	Subscription                  Subscription      `json:"subscription"`
	Members                       []UserCompanyRole `json:"members"`
	Language                      string            `gorm:"default:en" json:"language"`
	Active                        bool              `json:"active"`
	EnforcedClothingLimit         *int32            `json:"enforced_clothing_limit"`
	EnforcedDailyAIOutfitLimit    *int32            `json:"enforced_daily_ai_outfit_limit"`
	EnforcedLLMModel              *int32            `json:"enforced_llm_model"`
	EnforcedDailyClothingAnalysis *int32            `json:"enforced_daily_clothing_analysis"`
}
