package errx

import (
	"errors"
	"fmt"
)

// Kind classifies failures by how the conversation should recover from them.
// None of them is fatal: each maps to a reply for the user.
type Kind int

const (
	KindInternal Kind = iota
	// KindValidation is bad user input; the same step is prompted again.
	KindValidation
	// KindMissingProfile means the user has no ledger yet.
	KindMissingProfile
	// KindInvalidArgument is a malformed command (token count, unknown workout type).
	KindInvalidArgument
	// KindLookupFailure means the nutrition source returned nothing usable.
	KindLookupFailure
	// KindNotFound is a missing key in a backing store (cache miss).
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMissingProfile:
		return "missing_profile"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindLookupFailure:
		return "lookup_failure"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "Something went wrong, please try again."
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a Redis key miss.
	RedisNotFoundMessage = "redis key not found"
)

// AppError wraps an underlying error with a Kind and a message that is safe
// to show to the user.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return New(KindValidation, message, nil)
}

func MissingProfile(message string) *AppError {
	return New(KindMissingProfile, message, nil)
}

func InvalidArgument(message string) *AppError {
	return New(KindInvalidArgument, message, nil)
}

func LookupFailure(message string, err error) *AppError {
	return New(KindLookupFailure, message, err)
}

// KindOf returns the Kind of the first AppError in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the safe message of the first AppError in the chain,
// falling back to SystemErrorMessage for foreign errors.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return SystemErrorMessage
}
