package testutil

import (
	"errors"
	"testing"

	apperrors "stockdesk/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertMutation checks the (bool, error) result of an edit or delete.
func AssertMutation(t *testing.T, ok bool, err error, want bool) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok != want {
		t.Fatalf("expected mutation result %v, got %v", want, ok)
	}
}
