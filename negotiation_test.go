package cors_test

import (
	"net/http"
	"regexp"
	"slices"
	"testing"

	"github.com/corspolicy/cors"
	"github.com/corspolicy/cors/cfgerrors"
)

func TestAllowedOriginsNegotiate(t *testing.T) {
	cases := []struct {
		desc       string
		reqHeaders http.Header
		want       string
		wantOK     bool
		wantCalls  [2]int
	}{
		{
			desc:      "absent Origin",
			wantCalls: [2]int{0, 0},
		}, {
			desc:       "empty Origin",
			reqHeaders: http.Header{headerOrigin: {""}},
			wantCalls:  [2]int{0, 0},
		}, {
			desc:       "first matcher wins",
			reqHeaders: http.Header{headerOrigin: {allowedOrigin}},
			want:       allowedOrigin,
			wantOK:     true,
			wantCalls:  [2]int{1, 0},
		}, {
			desc:       "second matcher wins",
			reqHeaders: http.Header{headerOrigin: {"https://api.example.com"}},
			want:       "https://api.example.com",
			wantOK:     true,
			wantCalls:  [2]int{1, 1},
		}, {
			desc:       "no matcher wins",
			reqHeaders: http.Header{headerOrigin: {"https://example.org"}},
			wantCalls:  [2]int{1, 1},
		}, {
			desc:       "only first field line is considered",
			reqHeaders: http.Header{headerOrigin: {"https://example.org", allowedOrigin}},
			wantCalls:  [2]int{1, 1},
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			var calls [2]int
			ao := cors.NewAllowedOrigins(
				countingMatcher(&calls[0], cors.AllowOriginExact(allowedOrigin)),
				countingMatcher(&calls[1], cors.AllowOriginRegexp(regexp.MustCompile(`^https://[a-z]+\.example\.com$`))),
			)
			got, ok := ao.Negotiate(newRequest(http.MethodGet, tc.reqHeaders))
			if got != tc.want || ok != tc.wantOK {
				const tmpl = "got %q, %t; want %q, %t"
				t.Errorf(tmpl, got, ok, tc.want, tc.wantOK)
			}
			if calls != tc.wantCalls {
				const tmpl = "matcher calls: got %v; want %v"
				t.Errorf(tmpl, calls, tc.wantCalls)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestAllowedOriginsEchoesOriginVerbatim(t *testing.T) {
	const origin = "HTTPS://Example.COM"
	ao := cors.NewAllowedOrigins(func(string) bool { return true })
	got, ok := ao.Negotiate(newRequest(http.MethodGet, http.Header{headerOrigin: {origin}}))
	if !ok || got != origin {
		t.Errorf("got %q, %t; want %q, true", got, ok, origin)
	}
}

func TestAllowOriginRegexpIsNotAnchored(t *testing.T) {
	allow := cors.AllowOriginRegexp(regexp.MustCompile(`example\.com`))
	for _, origin := range []string{"https://example.com", "https://example.com.evil.example"} {
		if !allow(origin) {
			t.Errorf("%q: got false; want true", origin)
		}
	}
}

func TestAllowOriginPattern(t *testing.T) {
	cases := []struct {
		pattern string
		origin  string
		want    bool
	}{
		{"https://example.com", "https://example.com", true},
		{"https://example.com", "https://example.com:443", false},
		{"https://*.example.com", "https://a.b.example.com", true},
		{"https://*.example.com", "https://example.com", false},
		{"http://localhost:*", "http://localhost", true},
		{"http://localhost:*", "http://localhost:9090", true},
		{"http://localhost:*", "https://localhost:9090", false},
		{"https://*.example.com:*", "https://foo.example.com:8443", true},
		{"https://example.com", "https://example.com/", false},
	}
	for _, tc := range cases {
		allow, err := cors.AllowOriginPattern(tc.pattern)
		if err != nil {
			t.Fatalf("AllowOriginPattern(%q): unexpected error %v", tc.pattern, err)
		}
		if got := allow(tc.origin); got != tc.want {
			const tmpl = "pattern %q, origin %q: got %t; want %t"
			t.Errorf(tmpl, tc.pattern, tc.origin, got, tc.want)
		}
	}
}

func TestAllowOriginPatternErrors(t *testing.T) {
	cases := []struct {
		pattern string
		want    *errorMatcher
	}{
		{
			pattern: "null",
			want: newErrorMatcher(&cfgerrors.UnacceptableOriginPatternError{
				Value:  "null",
				Reason: "prohibited",
			}),
		}, {
			pattern: "https://example.com/",
			want: newErrorMatcher(&cfgerrors.UnacceptableOriginPatternError{
				Value:  "https://example.com/",
				Reason: "invalid",
			}),
		}, {
			pattern: "https://example.com:443",
			want: newErrorMatcher(&cfgerrors.UnacceptableOriginPatternError{
				Value:  "https://example.com:443",
				Reason: "prohibited",
			}),
		}, {
			pattern: "https://*.com",
			want: newErrorMatcher(&cfgerrors.IncompatibleOriginPatternError{
				Value:  "https://*.com",
				Reason: "psl",
			}),
		}, {
			pattern: "https://*.github.io",
			want: newErrorMatcher(&cfgerrors.IncompatibleOriginPatternError{
				Value:  "https://*.github.io",
				Reason: "psl",
			}),
		},
	}
	for _, tc := range cases {
		allow, err := cors.AllowOriginPattern(tc.pattern)
		if allow != nil {
			t.Errorf("AllowOriginPattern(%q): got non-nil AllowOrigin", tc.pattern)
		}
		if !tc.want.matches(err) {
			const tmpl = "AllowOriginPattern(%q): got error %v; want %v"
			t.Errorf(tmpl, tc.pattern, err, tc.want.err)
		}
	}
}

func TestAllowedMethods(t *testing.T) {
	cases := []struct {
		desc    string
		allowed []string
		acrm    []string
		want    bool
	}{
		{
			desc:    "absent ACRM",
			allowed: []string{http.MethodGet, http.MethodPost},
		}, {
			desc:    "empty ACRM",
			allowed: []string{http.MethodGet, http.MethodPost},
			acrm:    []string{""},
		}, {
			desc:    "exact match",
			allowed: []string{http.MethodGet, http.MethodPost},
			acrm:    []string{http.MethodPost},
			want:    true,
		}, {
			desc:    "lowercase requested method",
			allowed: []string{http.MethodGet, http.MethodPost},
			acrm:    []string{"post"},
			want:    true,
		}, {
			desc:    "lowercase allowed method",
			allowed: []string{"purge"},
			acrm:    []string{"PURGE"},
			want:    true,
		}, {
			desc:    "disallowed method",
			allowed: []string{http.MethodGet, http.MethodPost},
			acrm:    []string{http.MethodDelete},
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			am := cors.NewAllowedMethods(tc.allowed...)
			req := newRequest(http.MethodOptions, http.Header{headerACRM: tc.acrm})
			if got := am.Negotiate(req); got != tc.want {
				const tmpl = "ACRM %q: got %t; want %t"
				t.Errorf(tmpl, tc.acrm, got, tc.want)
			}
			if got := am.Allowed(); !slices.Equal(got, tc.allowed) {
				const tmpl = "Allowed(): got %q; want %q"
				t.Errorf(tmpl, got, tc.allowed)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestAllowedHeaders(t *testing.T) {
	cases := []struct {
		desc    string
		allowed []string
		acrh    []string
		want    bool
	}{
		{
			desc:    "absent ACRH",
			allowed: []string{"Authorization"},
		}, {
			desc:    "empty ACRH",
			allowed: []string{"Authorization"},
			acrh:    []string{""},
		}, {
			desc:    "subset of allowed headers",
			allowed: []string{"Authorization", "Accept", "Content-Type"},
			acrh:    []string{"Authorization"},
			want:    true,
		}, {
			desc:    "superset of allowed headers",
			allowed: []string{"Authorization", "Content-Type"},
			acrh:    []string{"Authorization,Accept,Content-Type"},
		}, {
			desc:    "case-insensitive match",
			allowed: []string{"Content-Type"},
			acrh:    []string{"content-type"},
			want:    true,
		}, {
			desc:    "optional whitespace around elements",
			allowed: []string{"Authorization", "Content-Type"},
			acrh:    []string{" authorization ,\tcontent-type\t"},
			want:    true,
		}, {
			desc:    "multiple field lines",
			allowed: []string{"Authorization", "Content-Type"},
			acrh:    []string{"authorization", "content-type"},
			want:    true,
		}, {
			desc:    "unmatched element in second field line",
			allowed: []string{"Authorization", "Content-Type"},
			acrh:    []string{"authorization", "x-foo"},
		}, {
			desc:    "empty element",
			allowed: []string{"Authorization", "Content-Type"},
			acrh:    []string{"authorization,,content-type"},
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			ah := cors.NewAllowedHeaders(tc.allowed...)
			req := newRequest(http.MethodOptions, http.Header{headerACRH: tc.acrh})
			if got := ah.Negotiate(req); got != tc.want {
				const tmpl = "ACRH %q: got %t; want %t"
				t.Errorf(tmpl, tc.acrh, got, tc.want)
			}
			if got := ah.Allowed(); !slices.Equal(got, tc.allowed) {
				const tmpl = "Allowed(): got %q; want %q"
				t.Errorf(tmpl, got, tc.allowed)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestNegotiatorsAreImmutable(t *testing.T) {
	names := []string{"GET", "POST"}
	am := cors.NewAllowedMethods(names...)
	names[0] = "DELETE"
	am.Allowed()[1] = "PATCH"
	if got, want := am.Allowed(), []string{"GET", "POST"}; !slices.Equal(got, want) {
		t.Errorf("Allowed(): got %q; want %q", got, want)
	}
}
