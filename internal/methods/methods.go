package methods

import (
	"github.com/corspolicy/cors/internal/util"
	"golang.org/x/net/http/httpguts"
)

// IsValid reports whether name is a valid method, [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#concept-method
func IsValid(name string) bool {
	// Note: the production is identical to that of header names.
	return httpguts.ValidHeaderFieldName(name)
}

// IsForbidden reports whether name is a forbidden method,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#forbidden-method
func IsForbidden(name string) bool {
	return forbiddenMethods.Contains(Normalize(name))
}

var forbiddenMethods = util.NewSet(
	"CONNECT",
	"TRACE",
	"TRACK",
)

// Normalize returns the form of name under which methods are compared:
// its [byte-uppercase] version.
//
// Method names are case-sensitive per RFC 9110, but browsers byte-uppercase
// the standard ones and some clients send them in lowercase regardless;
// middleware tolerate either.
//
// [byte-uppercase]: https://infra.spec.whatwg.org/#byte-uppercase
func Normalize(name string) string {
	return util.ByteUppercase(name)
}
