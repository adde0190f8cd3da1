package origins

import (
	"net/netip"
	"strings"
	"sync"

	"github.com/corspolicy/cors/cfgerrors"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	subdomainWildcard = "*" // marks one or more period-separated DNS labels
	wildcardSeq       = subdomainWildcard + string(labelSep)
	portWildcard      = "*" // marks an arbitrary (possibly implicit) port number

	// maxPatternLen is the maximum length of an origin pattern.
	// It is simply equal to maxOriginLen because *. is a placeholder for at
	// least two bytes (e.g. "a.").
	maxPatternLen = maxOriginLen
)

const (
	absentPort = 0
	// arbitraryPort is a sentinel value that subsumes all other port numbers.
	arbitraryPort = -1
)

// Kind represents the kind of a host pattern.
type Kind uint8

const (
	Domain              Kind = iota // exact domain
	ArbitrarySubdomains             // arbitrary subdomains of a domain
	IP                              // IP address
)

// A Pattern represents an origin pattern.
// The zero value does not correspond to a valid pattern.
type Pattern struct {
	// Scheme is the scheme of this origin pattern.
	Scheme string
	// Host is the host of this origin pattern, stripped of its leading *.
	// sequence (if any) and of its brackets (if an IPv6 address).
	Host string
	// Port is the positive port number (if any) of this origin pattern.
	// The zero value marks the absence of an explicit port.
	// -1 is used as a sentinel value to indicate that all ports are allowed.
	Port int
	// Kind is the kind of this origin pattern's host pattern.
	Kind Kind
}

// ParsePattern parses str into a fully valid [Pattern] structure.
// If it fails, it returns a non-nil error and some invalid pattern.
func ParsePattern(str string) (p Pattern, err error) {
	// Using [url.Parse] to parse str is tempting, but the impedance
	// mismatch between that function's behavior and our needs is too great:
	// it is in some ways too permissive and in other ways too strict.

	// As a defensive measure against maliciously long origin patterns,
	// let's first check the length of str.
	if len(str) > maxPatternLen {
		return p, invalidOriginPatternError(str)
	}
	if str == "null" {
		return p, prohibitedOriginPatternError(str)
	}
	scheme, rest, ok := parseScheme(str)
	if !ok {
		return p, invalidOriginPatternError(str)
	}
	if scheme == "file" {
		return p, prohibitedOriginPatternError(str)
	}
	p.Scheme = scheme
	rest, ok = strings.CutPrefix(rest, schemeHostSep)
	if !ok {
		return p, invalidOriginPatternError(str)
	}
	p.Host, p.Kind, rest, err = parseHostPattern(rest, str)
	if err != nil {
		return p, err
	}
	if rest != "" {
		rest, ok = strings.CutPrefix(rest, string(hostPortSep))
		if !ok {
			return p, invalidOriginPatternError(str)
		}
		p.Port, ok = parsePortPattern(rest)
		if !ok {
			return p, invalidOriginPatternError(str)
		}
		if isDefaultPortForScheme(p.Scheme, p.Port) {
			return p, prohibitedOriginPatternError(str)
		}
	}
	return p, nil
}

func prohibitedOriginPatternError(pattern string) error {
	return &cfgerrors.UnacceptableOriginPatternError{
		Value:  pattern,
		Reason: "prohibited",
	}
}

func invalidOriginPatternError(pattern string) error {
	return &cfgerrors.UnacceptableOriginPatternError{
		Value:  pattern,
		Reason: "invalid",
	}
}

// parseHostPattern scans and validates a host pattern in str.
// If it succeeds, it returns the host (stripped of any *. prefix or
// brackets), its kind, the unconsumed part of str, and nil;
// otherwise, its err result is some non-nil error.
func parseHostPattern(str, rawPattern string) (host string, kind Kind, rest string, err error) {
	if str != "" && str[0] == '[' { // str must be an IPv6 address.
		var ok bool
		host, rest, ok = strings.Cut(str[1:], "]")
		if !ok { // unmatched left bracket
			return "", kind, str, invalidOriginPatternError(rawPattern)
		}
		return validateIP(host, rest, rawPattern)
	}
	// str must be either an IPv4 address or a domain pattern.
	host, rest, wildcardSubs := scanHostPattern(str)
	if host == "" {
		return "", kind, str, invalidOriginPatternError(rawPattern)
	}
	// If the last non-empty label starts with a digit,
	// assume an IPv4 address, since no TLD starts with a digit
	// (see https://www.iana.org/domains/root/db).
	assumeIP, ok := firstByteOfRightmostLabelIsDigit(host)
	if !ok || assumeIP && wildcardSubs {
		return "", kind, str, invalidOriginPatternError(rawPattern)
	}
	if assumeIP {
		return validateIP(host, rest, rawPattern)
	}
	if wildcardSubs && len(host) > maxHostLen-len(wildcardSeq) {
		return "", kind, str, invalidOriginPatternError(rawPattern)
	}
	profileOnce.Do(initProfile)
	if _, err := profile.ToASCII(host); err != nil {
		return "", kind, str, prohibitedOriginPatternError(rawPattern)
	}
	kind = Domain
	if wildcardSubs {
		kind = ArbitrarySubdomains
	}
	return host, kind, rest, nil
}

// validateIP checks that host is an IP address in its canonical form.
func validateIP(host, rest, rawPattern string) (string, Kind, string, error) {
	ip, err := netip.ParseAddr(host)
	if err != nil || ip.Zone() != "" {
		return "", IP, rest, invalidOriginPatternError(rawPattern)
	}
	// IPv4 addresses must be in dotted-quad notation
	// and IPv6 addresses in their compressed form.
	if ip.Is4In6() || host != ip.String() {
		return "", IP, rest, prohibitedOriginPatternError(rawPattern)
	}
	return host, IP, rest, nil
}

// scanHostPattern scans a host pattern in str; it does not
// attempt to validate the resulting host.
// It returns the scanned host stripped of any leading *. sequence,
// the unconsumed part of str, and reports whether the host pattern
// starts with the *. sequence.
func scanHostPattern(str string) (host, rest string, wildcardSubs bool) {
	str, wildcardSubs = strings.CutPrefix(str, wildcardSeq)
	i := 0
	for ; i < len(str) && isDomainByte(str[i]); i++ {
		// deliberately empty
	}
	return str[:i], str[i:], wildcardSubs
}

// firstByteOfRightmostLabelIsDigit reports whether the first byte of the
// rightmost DNS label in host is a digit.
// If it succeeds, it returns the result of that check and true;
// otherwise, its ok result is false.
func firstByteOfRightmostLabelIsDigit(host string) (_ bool, ok bool) {
	// A trailing period marks an "absolute" domain.
	host = strings.TrimSuffix(host, string(labelSep))
	label := host[strings.LastIndexByte(host, labelSep)+1:]
	if label == "" {
		return false, false
	}
	return isDigit(label[0]), true
}

var (
	profileOnce sync.Once     // guards init of profile via initProfile
	profile     *idna.Profile // lazily initialized
)

func initProfile() {
	profile = idna.New(
		idna.BidiRule(),
		idna.ValidateLabels(true),
		idna.StrictDomainName(true),
		idna.VerifyDNSLength(true),
	)
}

// parsePortPattern parses a port pattern.
// It it succeeds, it returns the port number and true;
// otherwise, it returns 0 and false.
func parsePortPattern(str string) (int, bool) {
	if str == portWildcard {
		return arbitraryPort, true
	}
	port, rest, ok := parsePort(str)
	if !ok || rest != "" {
		return absentPort, false
	}
	return port, true
}

// isDefaultPortForScheme returns true for the following combinations
//   - (https, 443)
//   - (http, 80)
//
// and false otherwise.
func isDefaultPortForScheme(scheme string, port int) bool {
	return port == 80 && scheme == "http" ||
		port == 443 && scheme == "https"
}

// HostIsEffectiveTLD reports whether p's host is an effective top-level
// domain (eTLD), also known as [public suffix].
//
// [public suffix]: https://publicsuffix.org/list/
func (p *Pattern) HostIsEffectiveTLD() bool {
	if p.Kind == IP {
		return false
	}
	// For cases like of a Web origin that ends with a full stop,
	// we need to trim the latter for this check.
	host := strings.TrimSuffix(p.Host, string(labelSep))
	// We ignore the second (boolean) result because
	// it's false for some listed eTLDs (e.g. github.io)
	etld, _ := publicsuffix.PublicSuffix(host)
	return etld == host
}

// Match reports whether origin o is encompassed by p.
func (p *Pattern) Match(o *Origin) bool {
	if o.Scheme != p.Scheme {
		return false
	}
	if p.Port != arbitraryPort && o.Port != p.Port {
		return false
	}
	if p.Kind != ArbitrarySubdomains {
		return o.Host == p.Host
	}
	// At least one DNS label must precede p.Host.
	sub, found := strings.CutSuffix(o.Host, p.Host)
	return found && len(sub) > 1 && sub[len(sub)-1] == labelSep
}
