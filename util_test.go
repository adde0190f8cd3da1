package cors_test

import (
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/corspolicy/cors"
)

const (
	// common request headers
	headerOrigin = "Origin"

	// preflight-only request headers
	headerACRM = "Access-Control-Request-Method"
	headerACRH = "Access-Control-Request-Headers"

	// common response headers
	headerACAO = "Access-Control-Allow-Origin"
	headerACAC = "Access-Control-Allow-Credentials"

	// preflight-only response headers
	headerACAM = "Access-Control-Allow-Methods"
	headerACAH = "Access-Control-Allow-Headers"
	headerACMA = "Access-Control-Max-Age"

	// actual-only response headers
	headerACEH = "Access-Control-Expose-Headers"
)

const allowedOrigin = "https://example.com"

func newRequest(method string, hdrs http.Header) *http.Request {
	const dummyEndpoint = "https://example.com/whatever"
	req := httptest.NewRequest(method, dummyEndpoint, nil)
	for name, values := range hdrs {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	return req
}

// spyHandler is a cors.Handler that counts its invocations and returns
// a fixed response (or a fixed error).
type spyHandler struct {
	calls atomic.Int32
	res   cors.Response
	err   error
}

func newSpyHandler(status int, hdrs http.Header, body string) *spyHandler {
	return &spyHandler{
		res: cors.NewResponse(status, hdrs, []byte(body)),
	}
}

func (s *spyHandler) Handle(_ *http.Request) (cors.Response, error) {
	s.calls.Add(1)
	return s.res, s.err
}

// spyHTTPHandler is the net/http counterpart of spyHandler.
type spyHTTPHandler struct {
	calls  atomic.Int32
	status int
	hdrs   http.Header
	body   string
}

func (s *spyHTTPHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	s.calls.Add(1)
	for k, vs := range s.hdrs {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if s.status != 0 {
		w.WriteHeader(s.status)
	}
	if s.body != "" {
		io.WriteString(w, s.body)
	}
}

// stubOriginNegotiator always returns the same result
// and counts its invocations.
type stubOriginNegotiator struct {
	calls  atomic.Int32
	origin string
	ok     bool
}

func (s *stubOriginNegotiator) Negotiate(_ *http.Request) (string, bool) {
	s.calls.Add(1)
	return s.origin, s.ok
}

// stubNegotiator always returns the same result
// and counts its invocations.
type stubNegotiator struct {
	calls   atomic.Int32
	ok      bool
	allowed []string
}

func (s *stubNegotiator) Negotiate(_ *http.Request) bool {
	s.calls.Add(1)
	return s.ok
}

func (s *stubNegotiator) Allowed() []string {
	return slices.Clone(s.allowed)
}

// countingMatcher returns an AllowOrigin that delegates to allow
// and increments *calls on each invocation.
func countingMatcher(calls *int, allow cors.AllowOrigin) cors.AllowOrigin {
	return func(origin string) bool {
		*calls++
		return allow(origin)
	}
}

func assertHeaders(t *testing.T, got, want http.Header) {
	t.Helper()
	if !maps.EqualFunc(got, want, slices.Equal[[]string]) {
		t.Errorf("headers: got %v; want %v", got, want)
	}
}

func assertCalls(t *testing.T, name string, got int32, want int32) {
	t.Helper()
	if got != want {
		const tmpl = "%s: got %d call(s); want %d"
		t.Errorf(tmpl, name, got, want)
	}
}
