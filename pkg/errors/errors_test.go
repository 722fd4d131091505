package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidField, "unknown field: %s", "foo")

	if err.Code != ErrCodeInvalidField {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidField)
	}

	if err.Message != "unknown field: foo" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown field: foo")
	}

	expected := "INVALID_FIELD: unknown field: foo"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeStorage, cause, "save state")

	if err.Code != ErrCodeStorage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStorage)
	}

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	if err.Error() != "STORAGE_ERROR: save state: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidToken, "test"),
			code:     ErrCodeInvalidToken,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidToken, "test"),
			code:     ErrCodeStorage,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeInvalidDocument, New(ErrCodeInvalidValue, "inner"), "outer"),
			code:     ErrCodeInvalidDocument,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeInvalidDocument, New(ErrCodeInvalidValue, "inner"), "outer"),
			code:     ErrCodeInvalidValue,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("decode: %w", New(ErrCodeInvalidToken, "bad")),
			code:     ErrCodeInvalidToken,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNotFound, "x")); got != ErrCodeNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidPreset, "name too long")); got != "name too long" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
