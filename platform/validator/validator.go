// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var hhmmPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the casting tags registered:
// "daterange" accepts a date or "A ~ B" range, "hhmm" accepts a 24h clock time.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("daterange", validateDateRange)
	_ = v.RegisterValidation("hhmm", validateHHMM)
	_ = v.RegisterValidation("isodate", validateISODate)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

func validateHHMM(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || hhmmPattern.MatchString(s)
}

func validateISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || isDate(s)
}

func validateDateRange(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return false
	}
	s = strings.ReplaceAll(s, "〜", "~")
	parts := strings.Split(s, "~")
	switch len(parts) {
	case 1:
		return isDate(strings.TrimSpace(parts[0]))
	case 2:
		return isDate(strings.TrimSpace(parts[0])) && isDate(strings.TrimSpace(parts[1]))
	default:
		return false
	}
}

func isDate(s string) bool {
	s = strings.ReplaceAll(s, "/", "-")
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
