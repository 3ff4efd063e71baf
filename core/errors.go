package core

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at the session-manager / chain-client boundary so
// callers can branch without string-matching messages.
type Kind string

const (
	// KindAuthorizationRejected means the user or signer declined an
	// authorize/reauthorize request. Recoverable by a manual retry.
	KindAuthorizationRejected Kind = "authorization_rejected"

	// KindStaleSession means a reauthorize with a previously valid token was
	// rejected. The durable credential record is cleaned up and the caller
	// must fall back to a full connect.
	KindStaleSession Kind = "stale_session"

	// KindNotConnected means a signing or balance-dependent operation was
	// invoked with no active session. Caller error, never retried.
	KindNotConnected Kind = "not_connected"

	// KindInvalidAmount and KindInvalidAddress are transaction-builder input
	// validation failures. They never reach the network.
	KindInvalidAmount  Kind = "invalid_amount"
	KindInvalidAddress Kind = "invalid_address"

	// KindSubmissionFailed means the node rejected the signed transaction.
	// Nothing landed on chain, safe to retry.
	KindSubmissionFailed Kind = "submission_failed"

	// KindConfirmationTimeout means the transaction was submitted but not
	// confirmed within the bound. Outcome unknown: verify before retrying.
	KindConfirmationTimeout Kind = "confirmation_timeout"
)

// Error is a classified failure. Message is safe to show to a user.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf returns the Kind carried by err, or "" if err carries none.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage extracts the human-readable message from err, falling back to
// err.Error() for unclassified failures.
func UserMessage(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
