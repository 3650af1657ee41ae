package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// errCycle stands in for a structural sentinel from the design package.
var errCycle = errors.New("child ownership cycle")

func TestNewFormatsCodeAndMessage(t *testing.T) {
	err := New(ErrCodeInvalidTier, "unknown tier %q", "planet")

	if err.Code != ErrCodeInvalidTier {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidTier)
	}
	if want := `INVALID_TIER: unknown tier "planet"`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
	}
}

func TestWrapKeepsStructuralCause(t *testing.T) {
	cause := fmt.Errorf("page %q: %w: %q, %q", "0:1", errCycle, "2:3", "2:1")
	err := Wrap(ErrCodeCycle, cause, "invalid document")

	if !errors.Is(err, errCycle) {
		t.Error("wrapped error should still match the structural sentinel")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !strings.Contains(err.Error(), `"2:3"`) {
		t.Errorf("Error() = %q, want the offending node IDs", err.Error())
	}
}

func TestCodeLookupThroughChains(t *testing.T) {
	classifier := Wrap(ErrCodeClassifier, errors.New("connection refused"), "create gemini classifier")
	tests := []struct {
		name string
		err  error
		code Code
		is   bool
	}{
		{"direct", New(ErrCodeDuplicateID, "duplicate"), ErrCodeDuplicateID, true},
		{"other code", New(ErrCodeDuplicateID, "duplicate"), ErrCodeCycle, false},
		{"behind fmt wrap", fmt.Errorf("build: %w", New(ErrCodeBuild, "emit 1:1")), ErrCodeBuild, true},
		{"outer code wins", Wrap(ErrCodeInvalidTier, New(ErrCodeInvalidInput, "empty selector"), "invalid tiers"), ErrCodeInvalidTier, true},
		{"inner code hidden", Wrap(ErrCodeInvalidTier, New(ErrCodeInvalidInput, "empty selector"), "invalid tiers"), ErrCodeInvalidInput, false},
		{"collaborator", classifier, ErrCodeClassifier, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.is {
				t.Errorf("Is(%v) = %v, want %v", tt.code, got, tt.is)
			}
			if tt.is {
				if got := GetCode(tt.err); got != tt.code {
					t.Errorf("GetCode() = %v, want %v", got, tt.code)
				}
			}
		})
	}

	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessageDropsCodeAndCause(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"cycle", Wrap(ErrCodeCycle, errCycle, "invalid document"), "invalid document"},
		{"duplicate id", New(ErrCodeDuplicateID, "node %q appears twice", "1:2"), `node "1:2" appears twice`},
		{"behind fmt wrap", fmt.Errorf("layout: %w", New(ErrCodeInternal, "translator state")), "translator state"},
		{"plain", errors.New("open design.json: no such file"), "open design.json: no such file"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
