/*
Package errors implements the error handling used across the custody
application.

Reuse the root errors declared in this package whenever possible and register
a custom, extension specific root error only when none of them describes the
failure well enough. Use Register(code, description) to declare a new root
error. Codes must be unique and registration panics otherwise.

Every error returned to the client should wrap one of the registered root
errors. Use Wrap or Wrapf (or ErrXyz.New, ErrXyz.Newf) at the point where the
failure is detected so that a stacktrace is attached. Only the innermost wrap
records the stacktrace.

Once you have an error, you can use fmt to get more context:

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created

Use ErrXyz.Is(err) to test the kind of an error. This works with wrapped
errors as well as with errors combined using Append.
*/
package errors
