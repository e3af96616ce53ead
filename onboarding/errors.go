package onboarding

import (
	"context"
	"errors"
	"fmt"

	"onboardflow/dispute"
	"onboardflow/employee"
	"onboardflow/identity"
	"onboardflow/offer"
	"onboardflow/resolution"
	"onboardflow/signing"
)

// Kind is the error taxonomy the orchestrator exposes to callers. Component
// errors are never swallowed; they are wrapped into one of these kinds and
// returned untouched underneath.
type Kind string

const (
	// KindValidation: bad input, caller's fault, not retried automatically.
	KindValidation Kind = "validation"
	// KindConflict: a state precondition failed against fresh persisted state;
	// safe to refetch and retry once.
	KindConflict Kind = "conflict"
	// KindNotFound: no matching record.
	KindNotFound Kind = "not_found"
	// KindTransport: a collaborator was unreachable or timed out; retryable.
	KindTransport Kind = "transport"
	// KindSequence: out-of-order signing attempt; the client must resync to
	// the authoritative current document before retrying.
	KindSequence Kind = "sequence"
	// KindInternal: irrecoverable engine-side failure; state left unchanged.
	KindInternal Kind = "internal"
)

// Error wraps a component error with its taxonomy kind and a caller-safe
// message. The cause stays reachable through Unwrap for tests and logs; the
// message carries no internal detail.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("onboarding: %s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("onboarding: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the taxonomy kind, defaulting to internal.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindInternal
}

// translate maps component sentinels onto the taxonomy. Anything unmapped is
// internal: the orchestrator never guesses a "safe" interpretation.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var oe *Error
	if errors.As(err, &oe) {
		return err
	}

	var stale *employee.StaleStatusError
	if errors.As(err, &stale) {
		return &Error{
			Kind:    KindConflict,
			Message: fmt.Sprintf("journey state changed: expected %s, currently %s; refetch and retry", stale.Expected, stale.Current),
			cause:   err,
		}
	}

	switch {
	case errors.Is(err, identity.ErrEmptyIdentifier),
		errors.Is(err, identity.ErrInvalidIdentifierType),
		errors.Is(err, dispute.ErrInvalidReason),
		errors.Is(err, dispute.ErrDetailRequired),
		errors.Is(err, resolution.ErrEmptyMessage):
		return &Error{Kind: KindValidation, Message: "invalid input", cause: err}

	case errors.Is(err, offer.ErrAlreadyDecided):
		return &Error{Kind: KindConflict, Message: "the offer has already been decided; refetch it to see the recorded decision", cause: err}
	case errors.Is(err, dispute.ErrAlreadyResolved),
		errors.Is(err, resolution.ErrSessionResolved):
		return &Error{Kind: KindConflict, Message: "the dispute is already resolved", cause: err}
	case errors.Is(err, employee.ErrInvalidTransition):
		return &Error{Kind: KindConflict, Message: "the requested step is not available from the current journey state", cause: err}
	case errors.Is(err, signing.ErrEmptyPackage):
		return &Error{Kind: KindTransport, Message: "offer accepted; documents are still being prepared, try again shortly", cause: err}

	case errors.Is(err, employee.ErrNotFound),
		errors.Is(err, offer.ErrNotFound),
		errors.Is(err, dispute.ErrNotFound),
		errors.Is(err, resolution.ErrNotFound),
		errors.Is(err, signing.ErrPackageNotFound),
		errors.Is(err, signing.ErrUnknownDocument):
		return &Error{Kind: KindNotFound, Message: "no matching record", cause: err}

	case errors.Is(err, signing.ErrOutOfOrder):
		return &Error{Kind: KindSequence, Message: "document is not at the current signing position; resynchronize to the current document", cause: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTransport, Message: "a collaborator timed out; try again", cause: err}
	}

	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}
