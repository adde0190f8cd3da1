package cors

import (
	"net/http"
	"strconv"

	"github.com/corspolicy/cors/internal/headers"
)

// A Response is an immutable HTTP response:
// a status code, its status text, a header and a body.
// Methods that derive a Response from another never alter the latter.
type Response struct {
	status     int
	statusText string
	header     http.Header
	body       []byte
}

// NewResponse returns a Response with the specified status code, header and
// body. The status text is derived from status (see [http.StatusText]).
// NewResponse takes a copy of header, so that later changes to header do not
// affect the Response; body is not copied and must not be modified afterwards.
func NewResponse(status int, header http.Header, body []byte) Response {
	return Response{
		status:     status,
		statusText: http.StatusText(status),
		header:     cloneHeader(header),
		body:       body,
	}
}

// Status returns r's status code.
func (r Response) Status() int {
	return r.status
}

// StatusText returns r's status text.
func (r Response) StatusText() string {
	return r.statusText
}

// Header returns a copy of r's header.
func (r Response) Header() http.Header {
	return cloneHeader(r.header)
}

// Body returns r's body. Callers must not modify the result.
func (r Response) Body() []byte {
	return r.body
}

// WriteTo writes r to w.
func (r Response) WriteTo(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = append([]string(nil), v...)
	}
	w.WriteHeader(r.status)
	if len(r.body) == 0 {
		return nil
	}
	_, err := w.Write(r.body)
	return err
}

// withHeader returns a copy of r whose header field k is set to v.
func (r Response) withHeader(k, v string) Response {
	r.header = cloneHeader(r.header)
	r.header.Set(k, v)
	return r
}

// cloneHeader is like [http.Header.Clone] but never returns nil.
func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return make(http.Header)
	}
	return h.Clone()
}

// A responseMutator derives a new Response from an existing one.
// It never modifies its argument.
type responseMutator func(Response) Response

// pipeline composes steps into a single responseMutator
// that applies them from left to right.
func pipeline(steps ...responseMutator) responseMutator {
	return func(r Response) Response {
		for _, step := range steps {
			r = step(r)
		}
		return r
	}
}

func addAllowOrigin(origin string) responseMutator {
	return func(r Response) Response {
		return r.withHeader(headers.ACAO, origin)
	}
}

func addAllowMethods(names []string) responseMutator {
	// The elements of a header-field value may be separated simply by commas;
	// since whitespace is optional, let's not use any.
	// See https://httpwg.org/specs/rfc9110.html#abnf.extension.recipient
	acam := headers.Join(names)
	return func(r Response) Response {
		return r.withHeader(headers.ACAM, acam)
	}
}

func addAllowHeaders(names []string) responseMutator {
	acah := headers.Join(names)
	return func(r Response) Response {
		return r.withHeader(headers.ACAH, acah)
	}
}

func addAllowCredentials(credentialed bool) responseMutator {
	acac := headers.ValueFalse
	if credentialed {
		acac = headers.ValueTrue
	}
	return func(r Response) Response {
		return r.withHeader(headers.ACAC, acac)
	}
}

// addExposeHeaders leaves responses unchanged if names is empty.
func addExposeHeaders(names []string) responseMutator {
	if len(names) == 0 {
		return func(r Response) Response { return r }
	}
	aceh := headers.Join(names)
	return func(r Response) Response {
		return r.withHeader(headers.ACEH, aceh)
	}
}

func addMaxAge(seconds int) responseMutator {
	acma := strconv.Itoa(seconds)
	return func(r Response) Response {
		return r.withHeader(headers.ACMA, acma)
	}
}
