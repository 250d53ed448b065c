package models

import (
	"github.com/go-playground/validator"
)

type Subscription string

const (
	Free Subscription = "free"
	Pro  Subscription = "pro"
)

const (
	FreeClothesLimit       = 30
	FreeDailyAIOutfitLimit = 3
)

func (l *Subscription) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*l = Subscription(v)
	case []byte:
		*l = Subscription(v)
	}
	return nil
}

func (l Subscription) Value() (string, error) {
	return string(l), nil
}

func (l Subscription) IsPaid() bool {
	return l == Pro
}

// ClothesLimit is nil when the plan has no wardrobe size cap.
func (l Subscription) ClothesLimit() *int64 {
	if l.IsPaid() {
		return nil
	}
	limit := int64(FreeClothesLimit)
	return &limit
}

func ValidateSubscription(fl validator.FieldLevel) bool {
	return ValidateSubscriptionRaw(fl.Field().String())
}

func ValidateSubscriptionRaw(value string) bool {
	return value == string(Free) || value == string(Pro)
}

func enforced(v *int32) *int64 {
	if v == nil {
		return nil
	}
	limit := int64(*v)
	return &limit
}

// ClothesLimit is the enforced wardrobe size, else the plan's.
func (c Company) ClothesLimit() *int64 {
	if c.EnforcedClothingLimit != nil {
		return enforced(c.EnforcedClothingLimit)
	}
	return c.Subscription.ClothesLimit()
}

// DailyAIOutfitLimit caps AI stylist requests per day. Paid plans are unlimited
// unless a limit is enforced on the account.
func (c Company) DailyAIOutfitLimit() *int64 {
	if c.EnforcedDailyAIOutfitLimit != nil {
		return enforced(c.EnforcedDailyAIOutfitLimit)
	}
	if c.Subscription.IsPaid() {
		return nil
	}
	limit := int64(FreeDailyAIOutfitLimit)
	return &limit
}

func (c Company) DailyClothingAnalysisLimit() *int64 {
	return enforced(c.EnforcedDailyClothingAnalysis)
}
