package errors

import (
	"errors"
	"fmt"
	"reflect"
)

const (
	// SuccessABCICode is the ABCI code of a successful response.
	SuccessABCICode = 0

	// Errors that do not wrap a registered error are internal. They share
	// a single code and, outside of debug mode, a generic message.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log of an ABCI response for err.
//
// Registered errors expose their code and message. Any other error is
// internal: it gets code 1 and, unless debug is set, a generic message so
// that node details do not leak to clients. In debug mode the log carries
// the full error including its stack trace.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

type coder interface {
	ABCICode() uint32
}

// abciCode unwraps err until a layer provides a code. An error without any
// is internal.
func abciCode(err error) uint32 {
	for !errIsNil(err) {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	if err == nil {
		return SuccessABCICode
	}
	return internalABCICode
}

// errIsNil returns true if value represented by the given error is nil.
//
// A typed nil pointer wrapped in the error interface is nil as well.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	val := reflect.ValueOf(err)
	return val.Kind() == reflect.Ptr && val.IsNil()
}

// Redact replaces internal errors and recovered panics with a generic error,
// so that only errors declared by the application reach the client. Nothing
// is replaced in debug mode.
func Redact(err error, debug bool) error {
	if debug || errIsNil(err) {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalABCICode {
		return errors.New(internalABCILog)
	}
	return err
}
