// Package errs holds the error types shared by the domain, the use cases and
// the adapters.
//
// Validation errors (ValueIsRequiredError, ValueIsInvalidError,
// ValueIsOutOfRangeError) come from constructors. The fulfillment errors
// (NotFoundError, BusinessRuleError, StateTransitionError,
// InvariantViolationError) carry a message that can be shown to the caller.
// Every type unwraps to a sentinel, so callers branch with errors.Is and the
// boundaries map an error onto a Kind with Classify.
package errs
