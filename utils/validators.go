package utils

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const MinPasswordLength = 6

// local@domain.tld shape; anything stricter belongs to a mail verifier
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func InitValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("password", ValidatePasswordRule)
	}
}

func ValidatePasswordRule(fl validator.FieldLevel) bool {
	return ValidatePassword(fl.Field().String())
}

func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// NormalizeEmail lowercases and trims an email so the unique index is
// case-insensitive in effect.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
