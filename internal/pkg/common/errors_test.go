package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCustomErrorWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("toggle: %w", ErrChecklistStore.Wrap(cause))

	if !errors.Is(err, ErrChecklistStore) {
		t.Error("Expected wrapped error to match its catalogue entry")
	}
	if errors.Is(err, ErrInternalError) {
		t.Error("Expected a different code not to match")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected the cause to stay reachable")
	}
	if ErrChecklistStore.Err != nil {
		t.Error("Expected Wrap not to mutate the catalogue entry")
	}
}

func TestAsCustomError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"custom", ErrRecipeImportFailure.Wrap(errors.New("404")), "RECIPE_IMPORT_FAILED", http.StatusUnprocessableEntity},
		{"validation", NewValidationError("item is required"), ErrCodeInvalidRequest, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("bind: %w", NewValidationError("bad")), ErrCodeInvalidRequest, http.StatusBadRequest},
		{"plain", errors.New("boom"), ErrCodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := AsCustomError(tt.err)
			if ce.Code != tt.code || ce.Status != tt.status {
				t.Errorf("Expected %s/%d, got %s/%d", tt.code, tt.status, ce.Code, ce.Status)
			}
		})
	}
}

func TestErrorResponseDetails(t *testing.T) {
	err := ErrMealSourceError.Wrap(errors.New("upstream 502"))

	if resp := err.Response(false); resp.Details != "" {
		t.Errorf("Expected no details outside debug mode, got %q", resp.Details)
	}
	if resp := err.Response(true); resp.Details != "upstream 502" {
		t.Errorf("Expected details in debug mode, got %q", resp.Details)
	}
}
