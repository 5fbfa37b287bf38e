package errors

import (
	"fmt"
	"testing"
)

func TestTulesError(t *testing.T) {
	err := New(ErrCodeJobNotFound, "job not found")
	if err.Code != ErrCodeJobNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeJobNotFound, err.Code)
	}

	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeStoreCorrupt, "store unreadable")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	if !Is(wrapped, ErrCodeStoreCorrupt) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeJobNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	detailed := err.WithDetail("id", "abc123").WithDetail("count", 2)
	if detailed.Details["id"] != "abc123" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := JobAmbiguous("abc", []string{"abc123", "abc999"})
	if err.Code != ErrCodeJobAmbiguous {
		t.Errorf("expected code %s, got %s", ErrCodeJobAmbiguous, err.Code)
	}
	if err.Details["prefix"] != "abc" {
		t.Error("JobAmbiguous should include prefix detail")
	}

	err = AlreadyTerminal("abc123def", "completed")
	if err.Code != ErrCodeAlreadyTerminal {
		t.Errorf("expected code %s, got %s", ErrCodeAlreadyTerminal, err.Code)
	}
	if err.Details["status"] != "completed" {
		t.Error("AlreadyTerminal should include status detail")
	}

	err = ProviderUnavailable("")
	if err.Code != ErrCodeProviderUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeProviderUnavailable, err.Code)
	}
}
