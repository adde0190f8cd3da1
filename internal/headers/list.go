package headers

import (
	"strings"

	"github.com/corspolicy/cors/internal/util"
)

// ContainsAll reports whether every element of the [list-based field values]
// in values, once trimmed of OWS and byte-lowercased, is a member of set.
// The elements of set are expected to be byte-lowercase.
//
// Empty elements are not skipped: an empty element is never a member of set,
// and its presence causes ContainsAll to return false.
// If values is empty, ContainsAll vacuously returns true; callers that need to
// distinguish an absent header must check for it first.
//
// This function's parameter is a slice of strings rather than just a string
// because some intermediaries (reportedly) split the value of list-based
// fields like Access-Control-Request-Headers across multiple field lines.
//
// [list-based field values]: https://httpwg.org/specs/rfc9110.html#abnf.extension
func ContainsAll(set util.Set, values []string) bool {
	for _, v := range values {
		for elem := range strings.SplitSeq(v, ValueSep) {
			elem = TrimOWS(elem)
			// Bail out before byte-lowercasing elements that are too long
			// to be members of set.
			if len(elem) > set.MaxLen() {
				return false
			}
			if !set.Contains(util.ByteLowercase(elem)) {
				return false
			}
		}
	}
	return true
}
