// Package apperrors provides the application error type used across the relay.
// It extends the standard error interface with HTTP status codes and support
// for deriving and wrapping errors, so handlers can map failures to responses
// without switching on error strings.
package apperrors

// Error is the interface implemented by all application errors. Derivation
// methods return a new Error so package-level sentinels stay immutable.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // derives a new error using current as template
	Msg(msg string) Error                  // new error with message, wrapping the original
	MsgErr(msg string, err ...error) Error // new error with message, wrapping extra errors
	SetStatusCode(int) Error               // sets the HTTP status code
	StatusCode() int                       // returns the HTTP status code
	ErrorAll() string                      // full message including wrapped errors
	UnwrapAll() []error                    // all wrapped errors
}
