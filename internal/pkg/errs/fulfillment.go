package errs

import (
	"errors"
	"fmt"
)

var (
	ErrBusinessRuleViolated   = errors.New("business rule violated")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvariantViolation     = errors.New("invariant violation")
	ErrDuplicateRequest       = errors.New("duplicate request")
)

// BusinessRuleError is a client-correctable rejection such as an inactive item,
// insufficient stock or insufficient funds. Message is safe to show to the caller.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBusinessRuleViolated, e.Message)
}

func (e *BusinessRuleError) Unwrap() error {
	return ErrBusinessRuleViolated
}

// NotFoundError unwraps to ErrObjectNotFound and carries a caller-facing message, such as
// "Client not found" or "No account found for currency USD".
type NotFoundError struct {
	Subject string
	Message string
}

func NewNotFoundError(subject, message string) *NotFoundError {
	return &NotFoundError{Subject: subject, Message: message}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.Message)
}

func (e *NotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// StateTransitionError is returned by a guard that rejected a transition.
// The order is left untouched when this error is produced.
type StateTransitionError struct {
	From       string
	Transition string
	Message    string
}

func NewStateTransitionError(from, transition, message string) *StateTransitionError {
	return &StateTransitionError{From: from, Transition: transition, Message: message}
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s: %s (current status is %s)", ErrInvalidStateTransition, e.Message, e.From)
}

func (e *StateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// InvariantViolationError signals a defect: the requested mutation would break
// an arithmetic invariant. It must never be reported as a user error.
type InvariantViolationError struct {
	Subject string
	Cause   error
}

func NewInvariantViolationError(subject string, cause error) *InvariantViolationError {
	return &InvariantViolationError{Subject: subject, Cause: cause}
}

func (e *InvariantViolationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrInvariantViolation, e.Subject, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrInvariantViolation, e.Subject)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}

// Kind is the coarse classification used at the boundaries (HTTP, batch results).
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindStateGuard
	KindInvariant
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "ValidationFailure"
	case KindStateGuard:
		return "StateGuardFailure"
	case KindInvariant:
		return "InvariantViolation"
	case KindConflict:
		return "Conflict"
	case KindInternal:
		return "Internal"
	}
	return "Internal"
}

// Classify maps err onto a Kind. Invariant violations win over everything else
// so that a ledger defect is never masked by a wrapping validation error.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariant
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidStateTransition):
		return KindStateGuard
	case errors.Is(err, ErrDuplicateRequest):
		return KindConflict
	case errors.Is(err, ErrBusinessRuleViolated),
		errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsOutOfRange):
		return KindValidation
	}
	return KindInternal
}

// Message returns the caller-facing text of err.
func Message(err error) string {
	var br *BusinessRuleError
	if errors.As(err, &br) {
		return br.Message
	}
	var st *StateTransitionError
	if errors.As(err, &st) {
		return st.Message
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Message
	}
	return err.Error()
}
