package cors

import (
	"net/http"
	"regexp"
	"slices"

	"github.com/corspolicy/cors/cfgerrors"
	"github.com/corspolicy/cors/internal/headers"
	"github.com/corspolicy/cors/internal/origins"
	"github.com/corspolicy/cors/internal/util"
)

// An AllowOrigin reports whether a given origin (the literal value of a
// request's Origin header) is allowed. Implementations must be pure and
// safe for concurrent use.
type AllowOrigin func(origin string) bool

// AllowOriginExact returns an AllowOrigin that only allows s,
// compared byte for byte.
func AllowOriginExact(s string) AllowOrigin {
	return func(origin string) bool {
		return origin == s
	}
}

// AllowOriginRegexp returns an AllowOrigin that allows any origin matched by
// re. No anchoring is implied: anchor re yourself if you need to.
func AllowOriginRegexp(re *regexp.Regexp) AllowOrigin {
	return re.MatchString
}

// AllowOriginPattern parses an origin pattern and returns an AllowOrigin that
// allows the origins it encompasses. Besides exact Web origins
// in ASCII serialized form, the following forms are supported:
//
//	https://*.example.com // one or more arbitrary DNS labels before example.com
//	http://localhost:*    // an arbitrary (possibly implicit) port
//	https://*.example.com:*
//
// The null origin, the file scheme, default ports (80 for http,
// 443 for https), non-canonical IP addresses and Unicode hosts are
// prohibited. So are patterns that encompass arbitrary subdomains of a
// [public suffix] (e.g. https://*.com or https://*.github.io).
//
// If pattern is unacceptable, AllowOriginPattern returns a nil AllowOrigin
// and an error from package [github.com/corspolicy/cors/cfgerrors].
//
// [public suffix]: https://publicsuffix.org/
func AllowOriginPattern(pattern string) (AllowOrigin, error) {
	p, err := origins.ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	if p.Kind == origins.ArbitrarySubdomains && p.HostIsEffectiveTLD() {
		err := &cfgerrors.IncompatibleOriginPatternError{
			Value:  pattern,
			Reason: "psl",
		}
		return nil, err
	}
	f := func(origin string) bool {
		o, ok := origins.Parse(origin)
		return ok && p.Match(&o)
	}
	return f, nil
}

// An OriginNegotiator decides whether a request's origin is allowed.
// If it is, Negotiate returns the origin to echo back and true;
// otherwise, it returns "" and false.
type OriginNegotiator interface {
	Negotiate(r *http.Request) (origin string, ok bool)
}

// A Negotiator decides whether some aspect of a CORS-preflight request
// (its requested method or its requested headers) is allowed.
// Allowed returns the values to advertise when negotiation succeeds.
type Negotiator interface {
	Negotiate(r *http.Request) bool
	Allowed() []string
}

// AllowedOrigins is an [OriginNegotiator] backed by an ordered list of
// [AllowOrigin] matchers.
type AllowedOrigins struct {
	matchers []AllowOrigin
}

// NewAllowedOrigins returns an AllowedOrigins that consults matchers
// in order.
func NewAllowedOrigins(matchers ...AllowOrigin) *AllowedOrigins {
	return &AllowedOrigins{matchers: slices.Clone(matchers)}
}

// Negotiate consults the matchers in order and stops at the first one that
// allows r's origin, which it then returns verbatim.
// Only the first Origin field line is considered;
// an absent or empty Origin header is never allowed
// and no matcher is consulted.
func (ao *AllowedOrigins) Negotiate(r *http.Request) (string, bool) {
	// Fetch-compliant browsers send at most one Origin header;
	// see https://fetch.spec.whatwg.org/#http-network-or-cache-fetch
	// (step 12).
	origin, found := headers.First(r.Header, headers.Origin)
	if !found {
		return "", false
	}
	for _, allow := range ao.matchers {
		if allow(origin) {
			return origin, true
		}
	}
	return "", false
}

// AllowedMethods is a [Negotiator] for the method requested by a
// CORS-preflight request. Method names are compared case-insensitively
// (after byte-uppercasing) but advertised exactly as configured.
type AllowedMethods struct {
	names []string
	set   util.Set // byte-uppercased names
}

// NewAllowedMethods returns an AllowedMethods that allows names.
func NewAllowedMethods(names ...string) *AllowedMethods {
	am := AllowedMethods{names: slices.Clone(names)}
	for _, name := range names {
		am.set.Add(util.ByteUppercase(name))
	}
	return &am
}

// Negotiate reports whether r's Access-Control-Request-Method header
// names an allowed method. An absent or empty header is never allowed.
func (am *AllowedMethods) Negotiate(r *http.Request) bool {
	// Fetch-compliant browsers send at most one ACRM header;
	// see https://fetch.spec.whatwg.org/#cors-preflight-fetch (step 3).
	acrm, found := headers.First(r.Header, headers.ACRM)
	if !found {
		return false
	}
	return am.set.Contains(util.ByteUppercase(acrm))
}

// Allowed returns a copy of the configured method names, in order.
func (am *AllowedMethods) Allowed() []string {
	return slices.Clone(am.names)
}

// AllowedHeaders is a [Negotiator] for the headers requested by a
// CORS-preflight request. Header names are compared case-insensitively
// but advertised exactly as configured.
type AllowedHeaders struct {
	names []string
	set   util.Set // byte-lowercased names
}

// NewAllowedHeaders returns an AllowedHeaders that allows names.
func NewAllowedHeaders(names ...string) *AllowedHeaders {
	ah := AllowedHeaders{names: slices.Clone(names)}
	for _, name := range names {
		ah.set.Add(util.ByteLowercase(name))
	}
	return &ah
}

// Negotiate reports whether every element of r's
// Access-Control-Request-Headers header is an allowed header name.
// An absent or empty header is never allowed; neither is a header
// containing an empty element.
func (ah *AllowedHeaders) Negotiate(r *http.Request) bool {
	// Fetch-compliant browsers send at most one ACRH header line;
	// however, some intermediaries reportedly split it into multiple lines;
	// see https://github.com/rs/cors/issues/184.
	if _, found := headers.First(r.Header, headers.ACRH); !found {
		return false
	}
	return headers.ContainsAll(ah.set, r.Header[headers.ACRH])
}

// Allowed returns a copy of the configured header names, in order.
func (ah *AllowedHeaders) Allowed() []string {
	return slices.Clone(ah.names)
}
