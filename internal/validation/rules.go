// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/hex"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/quickie/internal/errors"
	secretDomain "github.com/allisson/quickie/internal/secret/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Hex validates that a string is lowercase or uppercase hexadecimal of even length.
var Hex = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_hex_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := hex.DecodeString(s); err != nil {
		return validation.NewError("validation_hex", "must be valid hex-encoded data")
	}
	return nil
})

// HexLength validates that a hex string decodes to exactly n bytes.
func HexLength(n int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok || s == "" {
			return nil
		}
		if len(s) != hex.EncodedLen(n) {
			return validation.NewError("validation_hex_length", "has an invalid length")
		}
		return nil
	})
}

// Identifier validates a secret identifier (URL-safe base64 alphabet).
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return secretDomain.ValidateID(s) == nil
	},
	validation.NewError("validation_identifier", "must be a valid secret identifier"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
