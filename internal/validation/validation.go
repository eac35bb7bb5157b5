// Package validation registers the field rules shared by gin request
// binding and the services behind it.
package validation

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"yamdb/internal/domain"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`) // Letters, digits and @/./+/-/_
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	validate = newValidator() // Shared validator instance
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	register(v)
	return v
}

func register(v *validator.Validate) {
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
}

// RegisterGin installs the custom rules on gin's binding validator
func RegisterGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

// ValidUsername checks the username format and the reserved name
func ValidUsername(username string) bool {
	if !usernamePattern.MatchString(username) {
		return false
	}
	return !strings.EqualFold(username, domain.ReservedUsername)
}

// Var validates a single value against a validator tag
func Var(value any, tag string) error {
	return validate.Var(value, tag)
}
