package headers

import "strings"

// ows lists the bytes that make up [optional whitespace (OWS)]:
// space and horizontal tab.
//
// [optional whitespace (OWS)]: https://httpwg.org/specs/rfc9110.html#whitespace
const ows = " \t"

// TrimOWS trims all leading and trailing OWS from s.
func TrimOWS(s string) string {
	return strings.Trim(s, ows)
}
