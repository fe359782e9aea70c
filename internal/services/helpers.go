package services

import (
	"strings"

	apperrors "stockdesk/internal/errors"
)

// maxReasonLength bounds free-text reasons on blocked items.
const maxReasonLength = 2000

func invalid(msg string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, msg)
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// optionalUpper trims and upper-cases a note. Blank notes become nil.
func optionalUpper(s *string) *string {
	if s == nil {
		return nil
	}
	v := upper(*s)
	if v == "" {
		return nil
	}
	return &v
}

// optionalTrim trims a note. Blank notes become nil.
func optionalTrim(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
