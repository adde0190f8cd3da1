/*
Package cors provides [net/http] middleware for
[Cross-Origin Resource Sharing (CORS)].

A [Middleware] sits in front of a handler and decides, for each request,
whether the declared origin is allowed and, for [CORS-preflight requests],
whether the requested method and headers are allowed. It then attaches the
corresponding [CORS response headers]. Negotiation failures never produce
errors: the middleware simply omits the headers that a browser would need
in order to let the cross-origin request through.

Two APIs are available:

  - [*Middleware.Wrap] adapts the middleware to [http.Handler];
  - [*Middleware.Handle] works on immutable [Response] values and lets the
    downstream [Handler] report errors.

Build middleware with [NewMiddleware], which validates its [Config] and
reports every configuration mistake at once
(see package [github.com/corspolicy/cors/cfgerrors]),
or with [New], which accepts custom negotiators and performs no validation.

Care is required for CORS middleware to work as intended:

  - Because CORS-preflight requests use [OPTIONS] as their method,
    you should not prevent OPTIONS requests from reaching your CORS
    middleware.
  - Because [CORS-preflight requests are not authenticated], authentication
    should not take place "ahead of" a CORS middleware.
    However, a CORS middleware may wrap an authentication middleware.
  - Multiple CORS middleware must not be stacked.

[CORS response headers]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS#the_http_response_headers
[CORS-preflight requests are not authenticated]: https://fetch.spec.whatwg.org/#cors-protocol-and-credentials
[CORS-preflight requests]: https://developer.mozilla.org/en-US/docs/Glossary/Preflight_request
[Cross-Origin Resource Sharing (CORS)]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS
[OPTIONS]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Methods/OPTIONS
*/
package cors
