package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-\/]{6,20}$`)

func ValidateCreateContactInput(input CreateContactInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.UserID) == "" {
		errors = append(errors, ValidationError{"user_id", "is required"})
	}

	if strings.TrimSpace(input.FirstName) == "" {
		errors = append(errors, ValidationError{"first_name", "is required"})
	} else if len(input.FirstName) > 200 {
		errors = append(errors, ValidationError{"first_name", "must not exceed 200 characters"})
	}

	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	if input.Phone != "" && !phonePattern.MatchString(input.Phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	return errors
}

func ValidateSendMediaInput(input SendMediaInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.UserID) == "" {
		errors = append(errors, ValidationError{"user_id", "is required"})
	}
	if strings.TrimSpace(input.LeadID) == "" {
		errors = append(errors, ValidationError{"lead_id", "is required"})
	}
	if len(input.Media.Data) == 0 {
		errors = append(errors, ValidationError{"file", "is required"})
	}
	if strings.TrimSpace(input.MediaType) == "" {
		errors = append(errors, ValidationError{"media_type", "is required"})
	}

	return errors
}

// joinValidationErrors flattens field errors into one message for the
// VALIDATION_ERROR domain error.
func joinValidationErrors(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
