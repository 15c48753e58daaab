package errcode

import (
	"errors"
	"fmt"
)

// Kind provides a coarse category for JOSE errors.
type Kind int

const (
	// Argument errors are raised for malformed or otherwise invalid input,
	// such as an unknown algorithm identifier or a bad compact serialization.
	Argument Kind = iota + 1

	// State errors indicate misuse of an object, such as serializing a
	// signature object before it has been signed.
	State

	// Policy errors are raised when a provider does not support, or a
	// filter does not accept, the algorithm requested by a header.
	Policy

	// Crypto errors wrap failures of the underlying cryptography provider.
	Crypto
)

func (k Kind) String() string {
	switch k {
	case Argument:
		return "argument"
	case State:
		return "state"
	case Policy:
		return "policy"
	case Crypto:
		return "crypto"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinel values that can be used with errors.Is to test the kind of an
// *Error without a type assertion.
var (
	ErrArgument = &Error{Kind: Argument}
	ErrState    = &Error{Kind: State}
	ErrPolicy   = &Error{Kind: Policy}
	ErrCrypto   = &Error{Kind: Crypto}
)

// Code is the stable identifier of an error message template, such as
// "JWK-00031".
type Code string

// Error is a JOSE error carrying a stable message code and the arguments to
// substitute into the message template. Rendering into a human readable (and
// possibly localized) message is deferred until Error or Message is called.
type Error struct {
	Kind Kind
	Code Code
	Args []any
	Err  error
}

// New returns an *Error of the given kind for the given code.
func New(kind Kind, code Code, args ...any) error {
	return &Error{
		Kind: kind,
		Code: code,
		Args: args,
	}
}

// Wrap returns an *Error of the given kind for the given code, wrapping the
// inner error so it remains reachable with errors.Is and errors.As.
func Wrap(kind Kind, code Code, err error, args ...any) error {
	return &Error{
		Kind: kind,
		Code: code,
		Args: args,
		Err:  err,
	}
}

// Error renders the error with the default (English) templates.
func (e *Error) Error() string {
	msg := render(defaultPrinter, e)
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind, or an *Error
// carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Kind == e.Kind
	}
	return t.Code == e.Code
}

// Is is a convenience function for testing the kind of an error anywhere in
// its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// CodeOf returns the code of the outermost *Error in the chain of err, or
// the empty code if there is none.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}
