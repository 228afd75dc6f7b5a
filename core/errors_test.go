package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClass_Retryable(t *testing.T) {
	retryable := []Class{ClassTimeout, ClassNetwork, ClassExternalService}
	for _, c := range retryable {
		if !c.Retryable() {
			t.Errorf("%s should be retryable", c)
		}
	}
	terminal := []Class{ClassSchemaViolation, ClassRender, ClassUnknown, ClassReasoningUnavailable, ClassBudgetExhausted}
	for _, c := range terminal {
		if c.Retryable() {
			t.Errorf("%s should not be retryable", c)
		}
	}
}

func TestClassOf(t *testing.T) {
	if got := ClassOf(NewRenderError("pdflatex failed", nil)); got != ClassRender {
		t.Errorf("expected render class, got %s", got)
	}
	wrapped := fmt.Errorf("step failed: %w", NewNetworkError("connection reset", nil))
	if got := ClassOf(wrapped); got != ClassNetwork {
		t.Errorf("expected network class through wrapping, got %s", got)
	}
	if got := ClassOf(context.DeadlineExceeded); got != ClassTimeout {
		t.Errorf("expected timeout class, got %s", got)
	}
	if got := ClassOf(errors.New("something odd")); got != ClassUnknown {
		t.Errorf("expected unknown class, got %s", got)
	}
}

func TestClassifiedError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewExternalServiceError("arxiv responded 503", cause)
	if !errors.Is(err, cause) {
		t.Error("classified error should unwrap to its cause")
	}
	var ce *ClassifiedError
	if !errors.As(err, &ce) || ce.Class != ClassExternalService {
		t.Errorf("errors.As should recover the classification, got %+v", ce)
	}
}

func TestClass_SessionFatal(t *testing.T) {
	if !ClassReasoningUnavailable.SessionFatal() || !ClassBudgetExhausted.SessionFatal() {
		t.Error("reasoning_unavailable and budget_exhausted are session fatal")
	}
	if ClassTimeout.SessionFatal() {
		t.Error("timeout is request scoped")
	}
}
