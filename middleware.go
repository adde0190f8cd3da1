package cors

import (
	"maps"
	"net/http"
	"strings"

	"github.com/corspolicy/cors/internal/headers"
	"go.uber.org/zap"
)

// A Handler produces a [Response] for a request.
// Errors returned by a Handler are propagated unchanged by [*Middleware.Handle].
type Handler interface {
	Handle(r *http.Request) (Response, error)
}

// The HandlerFunc type is an adapter to allow the use of ordinary functions
// as Handlers.
type HandlerFunc func(r *http.Request) (Response, error)

// Handle calls f(r).
func (f HandlerFunc) Handle(r *http.Request) (Response, error) {
	return f(r)
}

// An Outcome summarizes how a middleware processed one request.
// MethodAllowed and HeadersAllowed are only ever true for preflight requests
// whose origin is allowed.
type Outcome struct {
	Preflight      bool
	OriginPresent  bool
	OriginAllowed  bool
	MethodAllowed  bool
	HeadersAllowed bool
}

// An Observer is notified of the [Outcome] of every request that a
// middleware processes. Implementations must be safe for concurrent use.
// See package [github.com/corspolicy/cors/corsmetrics] for one that
// exports Prometheus metrics.
type Observer interface {
	Observe(Outcome)
}

// A Middleware is a CORS middleware.
// Call its [*Middleware.Wrap] method to apply it to a [http.Handler],
// or its [*Middleware.Handle] method to apply it to a [Handler].
//
// The zero value is ready to use but is a mere "passthrough" middleware,
// i.e. a middleware that simply delegates to the handler(s) it wraps.
// To obtain a proper CORS middleware, call [NewMiddleware] or [New].
//
// Middleware are immutable and safe for concurrent use by multiple
// goroutines.
type Middleware struct {
	origins      OriginNegotiator // nil <=> passthrough middleware
	methods      Negotiator
	headers      Negotiator
	credentialed bool
	maxAge       int
	actualTail   responseMutator // steps that follow allow-origin on actual requests
	logger       *zap.Logger
	observer     Observer
}

// New creates a CORS middleware from the specified negotiators and policy.
// Contrary to [NewMiddleware], New performs no validation whatsoever;
// it is meant for callers that provide their own negotiators.
// A nil negotiator never allows anything.
func New(origins OriginNegotiator, methods, reqHeaders Negotiator, p Policy) *Middleware {
	if methods == nil {
		methods = NewAllowedMethods()
	}
	if reqHeaders == nil {
		reqHeaders = NewAllowedHeaders()
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if origins == nil {
		origins = NewAllowedOrigins()
	}
	exposed := append([]string(nil), p.ResponseHeaders...)
	return &Middleware{
		origins:      origins,
		methods:      methods,
		headers:      reqHeaders,
		credentialed: p.Credentialed,
		maxAge:       maxAgeValue(p.MaxAgeInSeconds),
		actualTail: pipeline(
			addAllowCredentials(p.Credentialed),
			addExposeHeaders(exposed),
		),
		logger:   logger.With(zap.String("component", "cors")),
		observer: p.Observer,
	}
}

// isPreflight reports whether r is to be handled as a CORS-preflight request.
// Any OPTIONS request qualifies, whether or not it carries CORS headers.
func isPreflight(r *http.Request) bool {
	return strings.EqualFold(r.Method, http.MethodOptions)
}

// Handle applies m to next for request r.
//
// If r is a preflight request, next is not called and Handle returns a
// synthesized 204 (No Content) response with an empty body, which carries
// CORS headers only if r's origin is allowed.
//
// Otherwise, Handle calls next, regardless of r's origin. If next fails,
// Handle returns its error unchanged along with a zero Response.
// If r's origin is allowed, Handle returns next's response augmented with the
// Access-Control-Allow-Origin, Access-Control-Allow-Credentials and
// (if any response headers are to be exposed) Access-Control-Expose-Headers
// headers; otherwise, it returns next's response unchanged.
func (m *Middleware) Handle(r *http.Request, next Handler) (Response, error) {
	if m.origins == nil { // passthrough middleware
		return next.Handle(r)
	}
	if isPreflight(r) {
		return m.preflight(r), nil
	}
	res, err := next.Handle(r)
	if err != nil {
		return Response{}, err
	}
	return m.actual(r)(res), nil
}

// Wrap applies the CORS middleware to the specified handler.
//
// Preflight requests never reach h; the middleware responds to them itself.
// For other requests, the CORS response headers are added to h's response
// headers at the time h commits its response (i.e. at h's first call to
// WriteHeader or Write, or when h returns without writing anything);
// CORS headers take precedence over any homonymous headers set by h.
// Panics in h are not recovered.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.origins == nil { // passthrough middleware
			h.ServeHTTP(w, r)
			return
		}
		if isPreflight(r) {
			// A preflight response has no body; writing it cannot fail
			// in any way we could act upon.
			_ = m.preflight(r).WriteTo(w)
			return
		}
		cw := &corsWriter{
			ResponseWriter: w,
			commit: func(hdrs http.Header) {
				res := m.actual(r)(Response{header: hdrs})
				maps.Copy(hdrs, res.header)
			},
		}
		h.ServeHTTP(cw, r)
		cw.commitOnce()
	})
}

// preflight synthesizes a response to preflight request r.
func (m *Middleware) preflight(r *http.Request) Response {
	res := NewResponse(http.StatusNoContent, nil, nil)
	outcome := Outcome{Preflight: true}
	defer func() { m.observe(outcome) }()

	origin, ok := m.origins.Negotiate(r)
	outcome.OriginPresent = originPresent(r)
	if !ok {
		m.logOriginRejected(r)
		return res
	}
	outcome.OriginAllowed = true
	steps := []responseMutator{addAllowOrigin(origin)}
	if m.methods.Negotiate(r) {
		outcome.MethodAllowed = true
		steps = append(steps, addAllowMethods(m.methods.Allowed()))
	} else {
		m.logger.Debug("method not allowed",
			zap.String("origin", origin),
			zap.String("acrm", r.Header.Get(headers.ACRM)),
		)
	}
	if m.headers.Negotiate(r) {
		outcome.HeadersAllowed = true
		steps = append(steps, addAllowHeaders(m.headers.Allowed()))
	} else {
		m.logger.Debug("request headers not allowed",
			zap.String("origin", origin),
			zap.Strings("acrh", r.Header.Values(headers.ACRH)),
		)
	}
	// Expose-headers has no bearing on preflight responses.
	steps = append(steps,
		addAllowCredentials(m.credentialed),
		addMaxAge(m.maxAge),
	)
	return pipeline(steps...)(res)
}

// actual negotiates the origin of actual request r and returns the
// mutator to apply to the handler's response.
func (m *Middleware) actual(r *http.Request) responseMutator {
	origin, ok := m.origins.Negotiate(r)
	m.observe(Outcome{
		OriginPresent: originPresent(r),
		OriginAllowed: ok,
	})
	if !ok {
		m.logOriginRejected(r)
		return func(res Response) Response { return res }
	}
	return pipeline(addAllowOrigin(origin), m.actualTail)
}

func originPresent(r *http.Request) bool {
	_, found := headers.First(r.Header, headers.Origin)
	return found
}

func (m *Middleware) logOriginRejected(r *http.Request) {
	origin, found := headers.First(r.Header, headers.Origin)
	if !found {
		return
	}
	m.logger.Debug("origin not allowed",
		zap.String("origin", origin),
		zap.String("method", r.Method),
	)
}

func (m *Middleware) observe(o Outcome) {
	if m.observer != nil {
		m.observer.Observe(o)
	}
}

// corsWriter calls commit with the response headers right before they're
// sent. It does so at most once.
type corsWriter struct {
	http.ResponseWriter
	commit    func(http.Header)
	committed bool
}

func (w *corsWriter) commitOnce() {
	if w.committed {
		return
	}
	w.committed = true
	w.commit(w.ResponseWriter.Header())
}

func (w *corsWriter) WriteHeader(statusCode int) {
	w.commitOnce()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *corsWriter) Write(p []byte) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.Write(p)
}

// FlushError lets [http.ResponseController] flush w
// without bypassing commit.
func (w *corsWriter) FlushError() error {
	w.commitOnce()
	return http.NewResponseController(w.ResponseWriter).Flush()
}

// Unwrap lets [http.ResponseController] reach the underlying writer.
func (w *corsWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
