package util

// A Set represents a set of strings.
// The zero value represents an empty set and is ready to use.
type Set struct {
	m      map[string]struct{}
	maxLen int
}

// NewSet returns a Set that contains all of elems
// but no other elements.
func NewSet(elems ...string) Set {
	var set Set
	for _, e := range elems {
		set.Add(e)
	}
	return set
}

// Add adds e to set.
func (set *Set) Add(e string) {
	if set.m == nil {
		set.m = make(map[string]struct{})
	}
	set.m[e] = struct{}{}
	set.maxLen = max(set.maxLen, len(e))
}

// Contains reports whether e is an element of set.
func (set Set) Contains(e string) bool {
	if len(e) > set.maxLen {
		// e cannot possibly be an element of set;
		// no need to hash it.
		return false
	}
	_, found := set.m[e]
	return found
}

// Size returns the cardinality of set.
func (set Set) Size() int {
	return len(set.m)
}

// MaxLen returns the length of set's longest element,
// or 0 if set is empty.
func (set Set) MaxLen() int {
	return set.maxLen
}
