package validation

import (
	"math"
	"time"

	cerrors "github.com/vnykmshr/cadence/pkg/common/errors"
)

// ValidatePositiveDuration validates that a duration is strictly positive.
// Returns a ValidationError if the value is zero or negative.
func ValidatePositiveDuration(module, field string, value time.Duration) error {
	if value <= 0 {
		return cerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("duration must be greater than 0")
	}
	return nil
}

// ValidateNonNegativeDuration validates that a duration is zero or positive.
func ValidateNonNegativeDuration(module, field string, value time.Duration) error {
	if value < 0 {
		return cerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive duration")
	}
	return nil
}

// ValidatePositiveFloat validates that a float64 value is positive (> 0) and finite.
func ValidatePositiveFloat(module, field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return cerrors.NewValidationError(module, field, value, "must be finite")
	}
	if value <= 0 {
		return cerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// Returns a ValidationError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return cerrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return cerrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}
