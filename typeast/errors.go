package typeast

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrKind is one of the typed error kinds from §7. Every failure this
// module (and genbuild/validate/speccheck, which all return *Error too)
// can produce is one of these.
type ErrKind int

const (
	_ ErrKind = iota
	UnknownModule
	UnknownType
	WrongArity
	ArityMismatch
	BadArgument
	NoInhabitants
	Unsupported
	Protocol
	InfiniteType
	MissingSpec
)

func (k ErrKind) String() string {
	switch k {
	case UnknownModule:
		return "UnknownModule"
	case UnknownType:
		return "UnknownType"
	case WrongArity:
		return "WrongArity"
	case ArityMismatch:
		return "ArityMismatch"
	case BadArgument:
		return "BadArgument"
	case NoInhabitants:
		return "NoInhabitants"
	case Unsupported:
		return "Unsupported"
	case Protocol:
		return "Protocol"
	case InfiniteType:
		return "InfiniteType"
	case MissingSpec:
		return "MissingSpec"
	default:
		return "Unclassified"
	}
}

// Error is the single error type every public operation in §6.1 returns.
// It carries a Kind (for programmatic dispatch) and a human message; when
// it wraps a collaborator failure the chain is preserved via Unwrap so
// callers can still errors.As/errors.Is through to the original cause.
type Error struct {
	Kind    ErrKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("(E%03d) %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("(E%03d) %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is(err, SomeKindSentinel) work if callers compare against
// another *Error with the same Kind, without requiring exact identity.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// NewError builds a kind-only error with a formatted message.
func NewError(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an error of the given kind around a collaborator
// failure, keeping the original error reachable via errors.Unwrap.
func WrapError(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.Wrapf(cause, "typeast"),
	}
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, and false
// otherwise.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
