package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateConfig validates the assembled configuration after defaults
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	if err := v.validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if cfg.Planning.ShiftMinutes%cfg.Planning.SlotMinutes != 0 {
		return fmt.Errorf("planning.shift_minutes must be a whole number of slots")
	}
	if cfg.Planning.EntryEndMinute <= cfg.Planning.EntryStartMinute {
		return fmt.Errorf("planning entry window must be non-empty")
	}
	if cfg.Planning.ExtendedDriveMinutes < cfg.Planning.DailyDriveMinutes {
		return fmt.Errorf("planning.extended_drive_minutes cannot undercut the daily limit")
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var messages []string
	for _, fieldErr := range validationErrs {
		messages = append(messages, fmt.Sprintf("%s failed %s validation",
			fieldErr.Namespace(), fieldErr.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
