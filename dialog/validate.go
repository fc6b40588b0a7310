package dialog

import (
	"strconv"
	"strings"
)

// ValidationError reports a user-correctable input problem. Its message is
// sent back to the user as-is; the dialog state does not advance.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Code identifies the error kind for structured logs.
func (e *ValidationError) Code() string {
	return "VALIDATION"
}

// ValidateNonEmpty rejects blank input.
func ValidateNonEmpty(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Message: "Input must not be empty"}
	}
	return nil
}

// ValidateRating requires an integer between 1 and 5.
func ValidateRating(text string) error {
	rating, err := strconv.Atoi(text)
	if err != nil {
		return &ValidationError{Message: "Rating must be a number"}
	}
	if rating < 1 || rating > 5 {
		return &ValidationError{Message: "Rating must be between 1 and 5"}
	}
	return nil
}

// ValidateYear requires an integer between 1900 and 2100.
func ValidateYear(text string) error {
	year, err := strconv.Atoi(text)
	if err != nil {
		return &ValidationError{Message: "Year must be a number"}
	}
	if year < 1900 || year > 2100 {
		return &ValidationError{Message: "Year must be between 1900 and 2100"}
	}
	return nil
}
