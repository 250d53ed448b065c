package models

import (
	"github.com/go-playground/validator"
)

type Role string

const (
	OWNER  Role = "OWNER"
	MEMBER Role = "MEMBER"
)

func (l *Role) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*l = Role(v)
	case []byte:
		*l = Role(v)
	}
	return nil
}

func (l Role) Value() (string, error) {
	return string(l), nil
}

func ValidateRole(fl validator.FieldLevel) bool {
	return ValidateRoleRaw(fl.Field().String())
}

func ValidateRoleRaw(value string) bool {
	return value == string(OWNER) || value == string(MEMBER)
}
