package cors

import (
	"errors"

	"github.com/corspolicy/cors/cfgerrors"
	"github.com/corspolicy/cors/internal/headers"
	"github.com/corspolicy/cors/internal/methods"
	"github.com/corspolicy/cors/internal/util"
	"go.uber.org/zap"
)

// A Config configures a Middleware built by [NewMiddleware].
// Attempts to use settings described as "prohibited" result in a failure
// to build the desired middleware.
//
// # Origins and OriginPatterns
//
// Origins and OriginPatterns together configure a CORS middleware to allow
// access from some [Web origins]. Origins lists matchers
// (see [AllowOriginExact] and [AllowOriginRegexp]);
// OriginPatterns lists origin patterns, each of which is parsed as if by
// [AllowOriginPattern]:
//
//	Origins: []cors.AllowOrigin{
//	  cors.AllowOriginRegexp(regexp.MustCompile(`^https://preview-\d+\.example\.com$`)),
//	},
//	OriginPatterns: []string{
//	  "https://example.com",
//	  "https://*.example.com",
//	},
//
// Matchers are consulted in order, those listed in Origins first;
// the first one that allows the request's origin wins.
// Omitting to specify at least one matcher or origin pattern is prohibited;
// so is specifying a nil matcher or an invalid or prohibited origin pattern.
//
// Security considerations: by allowing Web origins in your server's CORS
// configuration, you engage in a trust relationship with those origins.
// Be especially careful about which origins you allow
// if you enable credentialed access.
//
// # Methods
//
// Methods configures a CORS middleware to allow any of the specified
// HTTP methods in CORS-preflight requests. Methods are matched
// case-insensitively but advertised exactly as specified, in order:
//
//	Methods: []string{http.MethodGet, http.MethodPost, "PURGE"},
//
// Specifying a method name that is not a valid token is prohibited;
// so is specifying one of the [forbidden method names] (CONNECT, TRACE, TRACK).
//
// # RequestHeaders
//
// RequestHeaders configures a CORS middleware to allow any of the
// specified request headers in CORS-preflight requests.
// Header names are case-insensitive.
//
//	RequestHeaders: []string{"Authorization", "Content-Type"},
//
// Specifying invalid header names is prohibited, as is specifying
// [forbidden request-header names].
// Finally, some header names that have no place in a request are prohibited:
//
//   - Access-Control-Allow-Credentials
//   - Access-Control-Allow-Headers
//   - Access-Control-Allow-Methods
//   - Access-Control-Allow-Origin
//   - Access-Control-Expose-Headers
//   - Access-Control-Max-Age
//
// # Policy
//
// Policy holds the remaining settings, which [New] accepts as well.
//
// [Web origins]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
// [forbidden method names]: https://fetch.spec.whatwg.org/#forbidden-method
// [forbidden request-header names]: https://fetch.spec.whatwg.org/#forbidden-request-header
type Config struct {
	// Precludes comparability, unkeyed struct literals, and conversion to and
	// from third-party types.
	_ [0]func()

	Origins        []AllowOrigin
	OriginPatterns []string
	Methods        []string
	RequestHeaders []string
	Policy
}

// A Policy holds the settings of a CORS middleware that do not take part
// in negotiation.
//
// # ResponseHeaders
//
// ResponseHeaders lists the response headers to expose to clients,
// in responses to actual (i.e. non-preflight) CORS requests only:
//
//	ResponseHeaders: []string{"X-Response-Time"},
//
// [NewMiddleware] rejects invalid names, [forbidden response-header names]
// and names that have no place in a response
// (Access-Control-Request-Headers, Access-Control-Request-Method and Origin).
//
// # Credentialed
//
// Credentialed determines the value ("true" or "false") of the
// Access-Control-Allow-Credentials header that accompanies every response
// to a CORS request whose origin is allowed.
//
// # MaxAgeInSeconds
//
// MaxAgeInSeconds determines the value of the Access-Control-Max-Age header
// of successful preflight responses. The zero value stands for the default
// of 600 seconds. A value of -1 instructs browsers not to cache preflight
// responses at all. [NewMiddleware] rejects any other negative value,
// as well as values larger than 86400.
//
// # Logger
//
// Logger, if non-nil, receives debug entries about failed negotiations.
//
// # Observer
//
// Observer, if non-nil, is notified of the outcome of every request.
//
// [forbidden response-header names]: https://fetch.spec.whatwg.org/#forbidden-response-header-name
type Policy struct {
	ResponseHeaders []string
	Credentialed    bool
	MaxAgeInSeconds int
	Logger          *zap.Logger
	Observer        Observer
}

const (
	// defaultMaxAge is sent when MaxAgeInSeconds is 0.
	defaultMaxAge = 600
	// Current upper bounds:
	//  - Firefox: 86400 (24h)
	//  - Chromium: 7200 (2h)
	//  - WebKit/Safari: 600 (10m)
	//
	// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Access-Control-Max-Age#delta-seconds.
	maxAgeUpperBound = 86400
	// sentinel value for disabling preflight caching
	disableCaching = -1
)

// NewMiddleware creates a CORS middleware that behaves in accordance with cfg.
// If cfg is invalid, it returns a nil [*Middleware] and some non-nil error
// that joins one error per configuration mistake.
// Otherwise, it returns a pointer to a CORS [Middleware] and a nil error.
//
// Mutating the fields of cfg after NewMiddleware has returned
// does not alter the middleware's behavior.
//
// If you need to programmatically handle the configuration errors constitutive
// of the resulting error, rely on package
// [github.com/corspolicy/cors/cfgerrors].
func NewMiddleware(cfg Config) (*Middleware, error) {
	// Accumulate errors in a slice so as to call errors.Join at most once.
	matchers, errs := validateOrigins(cfg.Origins, cfg.OriginPatterns)
	errs = validateMethods(errs, cfg.Methods)
	errs = validateRequestHeaders(errs, cfg.RequestHeaders)
	errs = validateResponseHeaders(errs, cfg.ResponseHeaders)
	errs = validateMaxAge(errs, cfg.MaxAgeInSeconds)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	m := New(
		NewAllowedOrigins(matchers...),
		NewAllowedMethods(cfg.Methods...),
		NewAllowedHeaders(cfg.RequestHeaders...),
		cfg.Policy,
	)
	return m, nil
}

func validateOrigins(matchers []AllowOrigin, patterns []string) ([]AllowOrigin, []error) {
	if len(matchers) == 0 && len(patterns) == 0 {
		err := &cfgerrors.UnacceptableOriginPatternError{
			Reason: "missing",
		}
		return nil, []error{err}
	}
	var (
		all  = make([]AllowOrigin, 0, len(matchers)+len(patterns))
		errs []error
	)
	for _, allow := range matchers {
		if allow == nil {
			err := &cfgerrors.UnacceptableOriginPatternError{
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		all = append(all, allow)
	}
	for _, raw := range patterns {
		allow, err := AllowOriginPattern(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, allow)
	}
	return all, errs
}

func validateMethods(errs []error, names []string) []error {
	for _, name := range names {
		if !methods.IsValid(name) {
			err := &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		if methods.IsForbidden(methods.Normalize(name)) {
			err := &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "forbidden",
			}
			errs = append(errs, err)
		}
	}
	return errs
}

func validateRequestHeaders(errs []error, names []string) []error {
	for _, name := range names {
		if !headers.IsValid(name) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "request",
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		// Fetch-compliant browsers byte-lowercase header names
		// before writing them to the ACRH header; see
		// https://fetch.spec.whatwg.org/#cors-unsafe-request-header-names,
		// step 6.
		normalized := util.ByteLowercase(name)
		if headers.IsForbiddenRequestHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "request",
				Reason: "forbidden",
			}
			errs = append(errs, err)
			continue
		}
		if headers.IsProhibitedRequestHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "request",
				Reason: "prohibited",
			}
			errs = append(errs, err)
		}
	}
	return errs
}

func validateResponseHeaders(errs []error, names []string) []error {
	for _, name := range names {
		if !headers.IsValid(name) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "response",
				Reason: "invalid",
			}
			errs = append(errs, err)
			continue
		}
		normalized := util.ByteLowercase(name)
		if headers.IsForbiddenResponseHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "response",
				Reason: "forbidden",
			}
			errs = append(errs, err)
			continue
		}
		if headers.IsProhibitedResponseHeaderName(normalized) {
			err := &cfgerrors.UnacceptableHeaderNameError{
				Value:  name,
				Type:   "response",
				Reason: "prohibited",
			}
			errs = append(errs, err)
		}
	}
	return errs
}

func validateMaxAge(errs []error, delta int) []error {
	if delta < disableCaching || maxAgeUpperBound < delta {
		err := &cfgerrors.MaxAgeOutOfBoundsError{
			Value:   delta,
			Default: defaultMaxAge,
			Max:     maxAgeUpperBound,
			Disable: disableCaching,
		}
		errs = append(errs, err)
	}
	return errs
}

// maxAgeValue returns the value to send in the ACMA header.
func maxAgeValue(delta int) int {
	switch delta {
	case 0:
		return defaultMaxAge
	case disableCaching:
		return 0
	default:
		return delta
	}
}
