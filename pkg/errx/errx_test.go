package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestRegistryNew(t *testing.T) {
	t.Parallel()

	reg := NewRegistry("TEST")
	codeNotFound := reg.Register("NOT_FOUND", TypeNotFound, http.StatusNotFound, "Thing not found")

	err := reg.New(codeNotFound)
	if err.Code != "TEST_NOT_FOUND" {
		t.Errorf("Code = %q, want TEST_NOT_FOUND", err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusNotFound)
	}
	if err.Type != TypeNotFound {
		t.Errorf("Type = %q, want %q", err.Type, TypeNotFound)
	}
}

func TestRegistryNewWithCause(t *testing.T) {
	t.Parallel()

	reg := NewRegistry("TEST")
	code := reg.Register("UPSTREAM", TypeInternal, http.StatusInternalServerError, "Upstream failed")

	cause := errors.New("connection reset")
	err := reg.NewWithCause(code, cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	wrapped := fmt.Errorf("handler: %w", err)
	if !IsCode(wrapped, code) {
		t.Error("IsCode should see through wrapping")
	}
	if !IsType(wrapped, TypeInternal) {
		t.Error("IsType should see through wrapping")
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	reg := NewRegistry("TEST")
	code := reg.Register("BAD_INPUT", TypeValidation, http.StatusBadRequest, "Bad input")

	err := reg.New(code).
		WithDetail("field", "question_id").
		WithDetails(map[string]any{"reason": "empty", "attempt": 2})

	if len(err.Details) != 3 {
		t.Fatalf("Details has %d entries, want 3", len(err.Details))
	}

	resp := err.ToHTTPResponse()
	if resp["code"] != ErrorCode("TEST_BAD_INPUT") {
		t.Errorf("response code = %v", resp["code"])
	}
	if _, ok := resp["details"]; !ok {
		t.Error("details missing from HTTP response")
	}
}

func TestUnregisteredCode(t *testing.T) {
	t.Parallel()

	reg := NewRegistry("TEST")
	err := reg.New("TEST_NEVER_REGISTERED")
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("unregistered code should map to 500, got %d", err.HTTPStatus)
	}
}
