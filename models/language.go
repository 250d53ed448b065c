package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

// Language is the language AI stylist answers are written in.
type Language string

const (
	EN Language = "en"
	AZ Language = "az"
	TR Language = "tr"
	RU Language = "ru"
)

var languagePattern = regexp.MustCompile("^(en|az|tr|ru)$")

func (l *Language) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*l = Language(v)
	case []byte:
		*l = Language(v)
	}
	return nil
}

func (l Language) Value() (string, error) {
	return string(l), nil
}

// PromptName is the English name used when instructing the model.
func (l Language) PromptName() string {
	switch l {
	case AZ:
		return "Azerbaijani"
	case TR:
		return "Turkish"
	case RU:
		return "Russian"
	default:
		return "English"
	}
}

func ValidateLanguage(fl validator.FieldLevel) bool {
	return ValidateLanguageRaw(fl.Field().String())
}

func ValidateLanguageRaw(value string) bool {
	return languagePattern.MatchString(value)
}
