package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		kind   Kind
		status int
	}{
		{"validation", Validation([]string{"a", "b"}), KindValidation, http.StatusBadRequest},
		{"not found", NotFound("Product"), KindNotFound, http.StatusNotFound},
		{"bad request", BadRequest("Invalid product ID"), KindBadRequest, http.StatusBadRequest},
		{"too many", TooManyRequests("slow down"), KindTooManyRequests, http.StatusTooManyRequests},
		{"internal", Internal(errors.New("boom")), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if got := StatusOf(tt.err); got != tt.status {
				t.Errorf("StatusOf = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := NotFound("Product").Message; got != "Product not found" {
		t.Fatalf("message = %q", got)
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	if err.Message != InternalMessage {
		t.Fatalf("message = %q, want %q", err.Message, InternalMessage)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("Product"))

	if !IsNotFound(wrapped) {
		t.Fatal("expected wrapped NotFound to be detected")
	}
	if got := StatusOf(wrapped); got != http.StatusNotFound {
		t.Fatalf("StatusOf = %d, want 404", got)
	}
}

func TestStatusOfUntypedIsInternal(t *testing.T) {
	if got := StatusOf(errors.New("unexpected")); got != http.StatusInternalServerError {
		t.Fatalf("StatusOf = %d, want 500", got)
	}
}
