package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Root errors shared by all extensions. Codes 1 to 99 are reserved for this
// package, extensions register theirs from 100 up.
var (
	// ErrUnauthorized means the required signature is missing, for example
	// a release not signed by the receiver.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrInvalidMsg means a message cannot be handled.
	ErrInvalidMsg = Register(4, "invalid message")

	// ErrInvalidModel means an entity cannot be persisted.
	ErrInvalidModel = Register(5, "invalid model")

	// ErrDuplicate means an entity with the same key already exists.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman signals a programming error in the application wiring.
	ErrHuman = Register(7, "coding error")

	// ErrCannotBeModified means an immutable value was about to change.
	ErrCannotBeModified = Register(8, "cannot be modified")

	// ErrEmpty means a required value is missing.
	ErrEmpty = Register(9, "value is empty")

	// ErrInvalidState means the operation is not allowed in the current
	// state of an entity, for example closing a funded account.
	ErrInvalidState = Register(10, "invalid state")

	// ErrInvalidType means a value is not of the expected type.
	ErrInvalidType = Register(11, "invalid type")

	// ErrInsufficientAmount means the funds do not cover the operation.
	ErrInsufficientAmount = Register(12, "insufficient amount")

	// ErrInvalidAmount means an amount is zero, negative or above a cap.
	ErrInvalidAmount = Register(13, "invalid amount")

	// ErrInvalidInput is a general malformed input.
	ErrInvalidInput = Register(14, "invalid input")

	// ErrDatabase means a storage operation failed.
	ErrDatabase = Register(15, "database")

	// ErrOverflow means a result does not fit its type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrCurrency means a ticker is malformed or two different currencies
	// were combined.
	ErrCurrency = Register(17, "currency mismatch")

	// ErrDerivationExhausted means no bump value produces a valid
	// program address for the given seeds.
	ErrDerivationExhausted = Register(18, "address derivation exhausted")

	// ErrPanic is set when recovering from a panic. Its details are never
	// shown to clients outside of debug mode.
	ErrPanic = Register(111222, "panic")
)

// usedCodes ensures that no two root errors share a code. Code 1 is reserved
// for internal errors.
var usedCodes = map[uint32]*Error{1: nil}

// Register declares a new root error. It panics if the code is taken, so
// call it only while initializing packages.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	e := &Error{code: code, desc: description}
	usedCodes[code] = e
	return e
}

// CodeName returns the description of the root error registered with given
// code.
func CodeName(code uint32) string {
	if e := usedCodes[code]; e != nil {
		return e.desc
	}
	return "internal"
}

// Error is a root error. Errors created at runtime wrap one of them, which
// gives them an ABCI code and makes them safe to return to clients.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

func (e Error) ABCICode() uint32 {
	return e.code
}

// New wraps e with the description. e.New("x") is the same as Wrap(e, "x").
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with formatting.
func (e *Error) Newf(description string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(description, args...))
}

// Is reports whether err is of this kind, unwrapping it as needed. An error
// created with Append is of a kind if any of its members is. A nil kind
// matches only a nil error.
func (kind *Error) Is(err error) bool {
	if kind == nil {
		return errIsNil(err)
	}
	for err != nil {
		if err == kind {
			return true
		}
		if m, ok := err.(*multiErr); ok {
			for _, e := range m.errs {
				if kind.Is(e) {
					return true
				}
			}
			return false
		}
		err = unwrap(err)
	}
	return false
}

// unwrap returns the error wrapped by err, or nil.
func unwrap(err error) error {
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	return nil
}

// causer is implemented by errors that wrap another error.
type causer interface {
	Cause() error
}

// Wrap adds a description to err. The innermost wrap records a stack trace.
// A nil err gives nil, so the result of a call can be wrapped directly.
//
// Errors that do not wrap a registered root error are internal.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover turns a panic into an ErrPanic assigned to err. It must be
// deferred directly.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType wraps err with the type name of obj.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}
