// Package gateway assembles the HTTP handler served by corsgate:
// a reverse proxy to the upstream API behind the CORS middleware,
// plus health and metrics endpoints.
package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"regexp"
	"strings"

	"github.com/corspolicy/cors"
	"github.com/corspolicy/cors/corsmetrics"
	"github.com/corspolicy/cors/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const metricsNamespace = "corsgate"

// NewMiddleware converts cfg into a CORS middleware.
// Errors about regular expressions and errors reported by
// [cors.NewMiddleware] are joined together.
func NewMiddleware(cfg config.CORSConfig, logger *zap.Logger, observer cors.Observer) (*cors.Middleware, error) {
	var errs []error
	origins := make([]cors.AllowOrigin, 0, len(cfg.Origins.Exact)+len(cfg.Origins.Regexps))
	for _, o := range cfg.Origins.Exact {
		origins = append(origins, cors.AllowOriginExact(o))
	}
	for i, expr := range cfg.Origins.Regexps {
		re, err := regexp.Compile(expr)
		if err != nil {
			errs = append(errs, fmt.Errorf("cors.origins.regexps[%d]: %w", i, err))
			continue
		}
		origins = append(origins, cors.AllowOriginRegexp(re))
	}
	mw, err := cors.NewMiddleware(cors.Config{
		Origins:        origins,
		OriginPatterns: cfg.Origins.Patterns,
		Methods:        cfg.Methods,
		RequestHeaders: cfg.RequestHeaders,
		Policy: cors.Policy{
			ResponseHeaders: cfg.ExposeHeaders,
			Credentialed:    cfg.Credentialed,
			MaxAgeInSeconds: cfg.MaxAge,
			Logger:          logger,
			Observer:        observer,
		},
	})
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return mw, nil
}

// New returns the gateway's root handler.
// If cfg.Metrics.Enabled, CORS metrics are registered with reg and all
// metrics gathered by reg are served at cfg.Metrics.Path; reg must then be
// non-nil.
func New(cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	upstream, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("gateway: parse upstream: %w", err)
	}

	var observer cors.Observer
	if cfg.Metrics.Enabled {
		if reg == nil {
			return nil, errors.New("gateway: metrics enabled but no registry")
		}
		col, err := corsmetrics.New(reg, corsmetrics.Config{Namespace: metricsNamespace})
		if err != nil {
			return nil, fmt.Errorf("gateway: %w", err)
		}
		observer = col
	}
	mw, err := NewMiddleware(cfg.CORS, logger, observer)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", mw.Wrap(newProxy(upstream, logger)))
	return accessLog(logger, mux), nil
}

// newProxy returns a reverse proxy to target.
// CORS headers set by the upstream are dropped so that the gateway's policy
// is the only one browsers get to see.
func newProxy(target *url.URL, logger *zap.Logger) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ModifyResponse: func(res *http.Response) error {
			for name := range res.Header {
				if strings.HasPrefix(name, "Access-Control-") {
					delete(res.Header, name)
				}
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("upstream request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}
