// Package origins parses Web origins and origin patterns
// and matches the former against the latter.
package origins

import "strings"

const (
	schemeHostSep = "://"     // scheme-host separator
	hostPortSep   = ':'       // host-port separator
	labelSep      = '.'       // DNS-label separator
	maxUint16     = 1<<16 - 1 // maximum value for uint16 type
)

const (
	// maxHostLen is the maximum length of a host, which is dominated by
	// the maximum length of an (absolute) domain name (253);
	// see https://devblogs.microsoft.com/oldnewthing/20120412-00/?p=7873.
	maxHostLen = 253
	// maxSchemeLen is the maximum tolerated length for schemes.
	// Its value is somewhat arbitrary but chosen so as to cover the great
	// majority of commonly used schemes.
	maxSchemeLen = 64
	// maxPortLen is the maximum length of a port's decimal representation.
	maxPortLen = len("65535")
	// maxHostPortLen is the maximum length of an origin's host-port part.
	maxHostPortLen = maxHostLen + 2 + 1 + maxPortLen // brackets and colon
	// maxOriginLen is the maximum length of an origin.
	maxOriginLen = maxSchemeLen + len(schemeHostSep) + maxHostPortLen
)

// Origin represents a (tuple) [Web origin].
//
// [Web origin]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
type Origin struct {
	// Scheme is the origin's scheme.
	Scheme string
	// Host is the origin's host, without brackets in the case of an
	// IPv6 address.
	Host string
	// Port is the origin's port (if any).
	// The zero value marks the absence of an explicit port.
	Port int
}

// Parse parses str into an [Origin] structure.
// It is lenient insofar as it performs just enough validation for
// [Pattern.Match] to know what to do with the resulting Origin value.
// In particular, the scheme and port of the resulting origin are guaranteed
// to be valid, but its host isn't.
func Parse(str string) (Origin, bool) {
	var o Origin
	if len(str) > maxOriginLen {
		return o, false
	}
	scheme, rest, ok := parseScheme(str)
	if !ok {
		return o, false
	}
	rest, ok = strings.CutPrefix(rest, schemeHostSep)
	if !ok {
		return o, false
	}
	host, rest, ok := cutHost(rest)
	if !ok {
		return o, false
	}
	var port int // assume no port at first
	if rest != "" {
		rest, ok = strings.CutPrefix(rest, string(hostPortSep))
		if !ok {
			return o, false
		}
		port, rest, ok = parsePort(rest)
		if !ok || rest != "" {
			return o, false
		}
	}
	o.Scheme = scheme
	o.Host = host
	o.Port = port
	return o, true
}

// cutHost slices str around the end of the host that starts it.
// An IPv6 host is returned without its brackets.
func cutHost(str string) (host, rest string, ok bool) {
	if str != "" && str[0] == '[' { // looks like an IPv6 address
		host, rest, ok = strings.Cut(str[1:], "]")
		if !ok || host == "" {
			return "", str, false
		}
		return host, rest, true
	}
	i := strings.IndexByte(str, hostPortSep)
	if i < 0 {
		i = len(str)
	}
	host, rest = str[:i], str[i:]
	// host can neither be empty nor start with a DNS-label separator
	if host == "" || host[0] == labelSep {
		return "", str, false
	}
	return host, rest, true
}

// parseScheme parses a URI scheme. If successful, it returns the scheme,
// the unconsumed part of str, and true; otherwise, it returns "", str, false.
func parseScheme(str string) (scheme, rest string, ok bool) {
	// See https://www.rfc-editor.org/rfc/rfc3986.html#section-3.1.
	if str == "" || !isLowerAlpha(str[0]) {
		return "", str, false
	}
	i := 1
	for end := min(maxSchemeLen, len(str)); i < end && isSubsequentSchemeByte(str[i]); i++ {
		// deliberately empty body
	}
	return str[:i], str[i:], true
}

// parsePort parses a port number. It returns the port number, the unconsumed
// part of the input string, and a bool that indicates success or failure.
func parsePort(str string) (int, string, bool) {
	const base = 10
	if str == "" || !isNonZeroDigit(str[0]) {
		return 0, str, false
	}
	port := intFromDigit(str[0])
	i := 1
	for end := min(len(str), maxPortLen); i < end && isDigit(str[i]); i++ {
		port = base*port + intFromDigit(str[i])
	}
	if maxUint16 < port {
		return 0, str, false
	}
	return port, str[i:], true
}

// intFromDigit returns the numerical value of ASCII digit b.
// For instance, if b is '9', the result is 9.
func intFromDigit(b byte) int {
	return int(b) - '0'
}

// The following predicates rely on the bitmask technique used in
// https://go.googlesource.com/go/+/refs/tags/go1.24.2/src/net/textproto/reader.go#678.

// isLowerAlpha reports whether b is in the 0x61-0x7A ASCII range.
func isLowerAlpha(b byte) bool {
	const mask = (1<<26 - 1) << 'a'
	return ((uint64(1)<<b)&(mask&(1<<64-1)) |
		(uint64(1)<<(b-64))&(mask>>64)) != 0
}

// isSubsequentSchemeByte reports whether b is a valid byte at index >= 1
// in a scheme.
func isSubsequentSchemeByte(b byte) bool {
	const mask = 0 |
		1<<'+' |
		1<<'-' |
		1<<'.' |
		(1<<10-1)<<'0' |
		(1<<26-1)<<'a'
	return ((uint64(1)<<b)&(mask&(1<<64-1)) |
		(uint64(1)<<(b-64))&(mask>>64)) != 0
}

// isDomainByte reports whether b is an ASCII lowercase letter, an ASCII
// digit, a hyphen (0x2D), a period (0x2E), or an underscore (0x5F).
func isDomainByte(b byte) bool {
	const mask = 0 |
		1<<'-' |
		1<<labelSep |
		(1<<10-1)<<'0' |
		(1<<26-1)<<'a' |
		1<<'_' // see https://stackoverflow.com/q/2180465
	return ((uint64(1)<<b)&(mask&(1<<64-1)) |
		(uint64(1)<<(b-64))&(mask>>64)) != 0
}

// isDigit reports whether b is in the 0x30-0x39 ASCII range.
func isDigit(b byte) bool {
	const mask = (1<<10 - 1) << '0'
	return ((uint64(1)<<b)&(mask&(1<<64-1)) |
		(uint64(1)<<(b-64))&(mask>>64)) != 0
}

// isNonZeroDigit reports whether b is in the 0x31-0x39 ASCII range.
func isNonZeroDigit(b byte) bool {
	const mask = (1<<9 - 1) << '1'
	return ((uint64(1)<<b)&(mask&(1<<64-1)) |
		(uint64(1)<<(b-64))&(mask>>64)) != 0
}
