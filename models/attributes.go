package models

import (
	"wardrobeapi/outfits"

	"github.com/go-playground/validator"
)

// Validators for the wardrobe vocabularies, registered on the echo validator.
var AttributeValidators = map[string]validator.Func{
	"category":             enumValidator(func(s string) bool { return outfits.ParseCategory(s).Valid() }),
	"warmth":               enumValidator(func(s string) bool { return outfits.ParseWarmthLevel(s).Valid() }),
	"formality":            enumValidator(func(s string) bool { return outfits.ParseFormalityLevel(s) != outfits.FormalityUnspecified }),
	"layering":             enumValidator(func(s string) bool { return outfits.ParseLayeringPosition(s) != outfits.LayeringUnspecified }),
	"water_resistance":     enumValidator(func(s string) bool { return outfits.ParseWaterResistance(s) != outfits.WaterResistanceUnspecified }),
	"color_intensity":      enumValidator(func(s string) bool { return outfits.ParseColorIntensity(s) != outfits.ColorIntensityUnspecified }),
	"condition_status":     enumValidator(func(s string) bool { return outfits.ParseConditionStatus(s) != outfits.ConditionUnspecified }),
	"compliment_frequency": enumValidator(func(s string) bool { return outfits.ParseComplimentFrequency(s) != outfits.ComplimentsUnspecified }),
	"breathability":        enumValidator(func(s string) bool { return outfits.ParseBreathability(s) != outfits.BreathabilityUnspecified }),
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}

// Canonical label helpers. Stored values are always the canonical spelling so
// that lookups and the AI prompt see one form.

func CanonicalCategory(s string) string { return outfits.ParseCategory(s).String() }
func CanonicalWarmth(s string) string   { return outfits.ParseWarmthLevel(s).String() }

func canonicalPtr(s *string, canon func(string) string) *string {
	if s == nil {
		return nil
	}
	v := canon(*s)
	if v == "" {
		return nil
	}
	return &v
}

func CanonicalFormality(s *string) *string {
	return canonicalPtr(s, func(v string) string { return outfits.ParseFormalityLevel(v).String() })
}

func CanonicalLayering(s *string) *string {
	return canonicalPtr(s, func(v string) string { return outfits.ParseLayeringPosition(v).String() })
}

func CanonicalWaterResistance(s *string) *string {
	return canonicalPtr(s, func(v string) string { return outfits.ParseWaterResistance(v).String() })
}

func CanonicalColorIntensity(s *string) *string {
	return canonicalPtr(s, func(v string) string { return outfits.ParseColorIntensity(v).String() })
}

func CanonicalCondition(s *string) *string {
	return canonicalPtr(s, func(v string) string { return outfits.ParseConditionStatus(v).String() })
}

func CanonicalCompliments(s *string) *string {
	return canonicalPtr(s, func(v string) string { return outfits.ParseComplimentFrequency(v).String() })
}

func CanonicalBreathability(s *string) *string {
	return canonicalPtr(s, func(v string) string { return outfits.ParseBreathability(v).String() })
}
