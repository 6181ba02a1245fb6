package validation

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support. maxLen <= 0 disables the length check.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		return checkLen(fieldName, v, maxLen)
	}
}

// Optional validates that an optional field does not exceed maxLen characters if provided.
func Optional(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		return checkLen(fieldName, v, maxLen)
	}
}

func checkLen(fieldName, v string, maxLen int) string {
	if maxLen > 0 && utf8.RuneCountInString(v) > maxLen {
		return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
	}
	return ""
}

// Email validates a bare address (no display name). Empty values pass; pair with Required.
func Email(fieldName string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return "Enter a valid " + strings.ToLower(fieldName) + " address."
		}
		return ""
	}
}

// Number validates a decimal number. Empty values pass.
func Number(fieldName string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fieldName + " must be a number."
		}
		return ""
	}
}

// Date validates a calendar date as sent by a date input (YYYY-MM-DD). Empty values pass.
func Date(fieldName string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if _, err := time.Parse(time.DateOnly, v); err != nil {
			return fieldName + " must be a date (YYYY-MM-DD)."
		}
		return ""
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break
		}
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// Valid reports whether no field failed.
func (fv *FieldValidator) Valid() bool { return len(fv.errors) == 0 }
