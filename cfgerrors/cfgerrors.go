/*
Package cfgerrors provides functionalities for programmatically handling
configuration errors produced by [github.com/corspolicy/cors.NewMiddleware].

Most users have no use for this package: printing the joined error that
NewMiddleware returns is usually enough. However, programs that let their
operators configure CORS through some external means (a configuration file,
a Web portal, a command-line interface) may use this package to report each
configuration mistake on its own, perhaps in a more human-friendly way.
*/
package cfgerrors

import (
	"fmt"
	"iter"
)

// An UnacceptableOriginPatternError indicates an unacceptable origin matcher
// or origin pattern.
// The Reason field may take one of three values:
//   - "missing": no origin matcher was specified;
//   - "invalid": the origin matcher is nil or the origin pattern is invalid;
//   - "prohibited": the origin pattern is prohibited by this library.
//
// For more details, see [github.com/corspolicy/cors.AllowOriginPattern].
type UnacceptableOriginPatternError struct {
	Value  string // the unacceptable value that was specified
	Reason string // missing | invalid | prohibited
}

func (err *UnacceptableOriginPatternError) Error() string {
	if err.Reason == "missing" {
		return "cors: at least one origin must be allowed"
	}
	if err.Value == "" {
		return "cors: nil origin matcher"
	}
	const tmpl = "cors: %s origin pattern %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An IncompatibleOriginPatternError indicates an origin pattern that
// encompasses arbitrary subdomains of a [public suffix] (e.g. https://*.com).
// Its Reason field is always "psl".
//
// [public suffix]: https://publicsuffix.org/
type IncompatibleOriginPatternError struct {
	Value  string // the offending origin pattern
	Reason string // psl
}

func (err *IncompatibleOriginPatternError) Error() string {
	if err.Reason != "psl" {
		// We never produce such errors.
		return "cors: unknown issue"
	}
	const tmpl = "cors: for security reasons, origin patterns like %q that encompass subdomains of a public suffix are prohibited"
	return fmt.Sprintf(tmpl, err.Value)
}

// An UnacceptableMethodError indicates an unacceptable method.
// The Reason field may take one of two values:
//   - "invalid": the method is not a valid [token];
//   - "forbidden": the method is forbidden by [the Fetch standard].
//
// [the Fetch standard]: https://fetch.spec.whatwg.org/#forbidden-method
// [token]: https://httpwg.org/specs/rfc9110.html#method.overview
type UnacceptableMethodError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | forbidden
}

func (err *UnacceptableMethodError) Error() string {
	const tmpl = "cors: %s method %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An UnacceptableHeaderNameError indicates an unacceptable header name.
// The Type field may take one of two values:
//   - "request";
//   - "response".
//
// The Reason field may take one of three values:
//   - "invalid": the header name is invalid;
//   - "prohibited": the header name is prohibited by this library;
//   - "forbidden": the header name is forbidden by [the Fetch standard].
//
// [the Fetch standard]: https://fetch.spec.whatwg.org
type UnacceptableHeaderNameError struct {
	Value  string // the unacceptable value that was specified
	Type   string // request | response
	Reason string // invalid | prohibited | forbidden
}

func (err *UnacceptableHeaderNameError) Error() string {
	const tmpl = "cors: %s %s-header name %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Type, err.Value)
}

// A MaxAgeOutOfBoundsError indicates a max-age value that's either too low
// or too high.
type MaxAgeOutOfBoundsError struct {
	Value   int // the unacceptable value that was specified
	Default int // max-age value sent if MaxAgeInSeconds is 0
	Max     int // maximum max-age value permitted by this library
	Disable int // sentinel value for disabling preflight caching
}

func (err *MaxAgeOutOfBoundsError) Error() string {
	const tmpl = "cors: out-of-bounds max-age value %d (default: %d; max: %d; disable caching: %d)"
	return fmt.Sprintf(tmpl, err.Value, err.Default, err.Max, err.Disable)
}

// All returns an iterator over the CORS-configuration errors contained in
// err's error tree. The order is unspecified. All only supports error values
// returned by [github.com/corspolicy/cors.NewMiddleware]; it should not be
// called on any other error value.
func All(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		every(err, yield)
	}
}

func every(err error, f func(error) bool) bool {
	switch err := err.(type) {
	// Errors are only ever joined, never wrapped.
	case interface{ Unwrap() []error }:
		for _, err := range err.Unwrap() {
			if !every(err, f) {
				return false
			}
		}
		return true
	default:
		return f(err)
	}
}
