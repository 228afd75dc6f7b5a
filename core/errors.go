package core

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Class categorizes a failure by origin. Request-level classes are recorded
// on the failed ToolResult and fed back to the reasoner as context;
// session-level classes terminate the control loop.
type Class string

const (
	// ClassSchemaViolation marks tool arguments rejected by the input schema.
	// Fatal for that request, never retried, tool body never invoked.
	ClassSchemaViolation Class = "schema_violation"
	// ClassTimeout marks an invocation that exceeded its deadline.
	ClassTimeout Class = "timeout"
	// ClassNetwork marks transport-level failures (DNS, connect, reset).
	ClassNetwork Class = "network_error"
	// ClassExternalService marks a remote service responding with an error.
	ClassExternalService Class = "external_service_error"
	// ClassRender marks deterministic document/figure production failures.
	// Retrying with identical input wastes a cycle, so it never is.
	ClassRender Class = "render_error"
	// ClassUnknown is the fallback for unclassified tool-internal failures.
	ClassUnknown Class = "unknown_error"

	// ClassReasoningUnavailable is session-fatal: the reasoner stayed
	// unreachable after its retry budget was spent.
	ClassReasoningUnavailable Class = "reasoning_unavailable"
	// ClassBudgetExhausted is session-fatal: the iteration budget ran out
	// before the reasoner converged. An abort, not a bug.
	ClassBudgetExhausted Class = "budget_exhausted"
)

// Retryable reports whether failures of this class may be retried under a
// bounded backoff policy.
func (c Class) Retryable() bool {
	switch c {
	case ClassTimeout, ClassNetwork, ClassExternalService:
		return true
	}
	return false
}

// SessionFatal reports whether this class terminates the whole session
// rather than a single request.
func (c Class) SessionFatal() bool {
	return c == ClassReasoningUnavailable || c == ClassBudgetExhausted
}

// ClassifiedError is a typed, inspectable failure value. Every failure path
// in the system produces one of these rather than a raw error, so callers
// can branch on Class without string matching.
type ClassifiedError struct {
	Class   Class
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *ClassifiedError) Unwrap() error { return e.Err }

// NewClassifiedError wraps err with an explicit class and message.
func NewClassifiedError(class Class, message string, err error) *ClassifiedError {
	return &ClassifiedError{Class: class, Message: message, Err: err}
}

// NewSchemaViolation builds a schema_violation error.
func NewSchemaViolation(message string) *ClassifiedError {
	return &ClassifiedError{Class: ClassSchemaViolation, Message: message}
}

// NewTimeoutError builds a timeout error wrapping the deadline cause.
func NewTimeoutError(message string, err error) *ClassifiedError {
	return &ClassifiedError{Class: ClassTimeout, Message: message, Err: err}
}

// NewNetworkError builds a network_error wrapping the transport cause.
func NewNetworkError(message string, err error) *ClassifiedError {
	return &ClassifiedError{Class: ClassNetwork, Message: message, Err: err}
}

// NewExternalServiceError builds an external_service_error.
func NewExternalServiceError(message string, err error) *ClassifiedError {
	return &ClassifiedError{Class: ClassExternalService, Message: message, Err: err}
}

// NewRenderError builds a render_error.
func NewRenderError(message string, err error) *ClassifiedError {
	return &ClassifiedError{Class: ClassRender, Message: message, Err: err}
}

// NewReasoningUnavailable builds the session-fatal reasoner failure.
func NewReasoningUnavailable(message string, err error) *ClassifiedError {
	return &ClassifiedError{Class: ClassReasoningUnavailable, Message: message, Err: err}
}

// NewBudgetExhausted builds the session-fatal iteration budget abort.
func NewBudgetExhausted(message string) *ClassifiedError {
	return &ClassifiedError{Class: ClassBudgetExhausted, Message: message}
}

// ClassOf inspects err and returns its failure class. Explicitly classified
// errors keep their class; context deadline and net errors are mapped to
// timeout / network; everything else is unknown.
func ClassOf(err error) Class {
	if err == nil {
		return ""
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return ClassTimeout
		}
		return ClassNetwork
	}
	return ClassUnknown
}
