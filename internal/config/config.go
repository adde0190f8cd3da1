// Package config loads and validates the configuration of corsgate.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/corspolicy/cors/internal/logging"
)

// Config is the root configuration of corsgate.
type Config struct {
	// Listen is the TCP address the gateway listens on.
	Listen string `mapstructure:"listen"`
	// Upstream is the absolute http or https URL of the proxied API.
	Upstream string `mapstructure:"upstream"`
	// ShutdownTimeout bounds the time allowed for in-flight requests to
	// complete on shutdown.
	ShutdownTimeout time.Duration  `mapstructure:"shutdown_timeout"`
	Log             logging.Config `mapstructure:"log"`
	Metrics         MetricsConfig  `mapstructure:"metrics"`
	CORS            CORSConfig     `mapstructure:"cors"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// CORSConfig is the file form of the CORS policy enforced by the gateway.
type CORSConfig struct {
	Origins        OriginsConfig `mapstructure:"origins"`
	Methods        []string      `mapstructure:"methods"`
	RequestHeaders []string      `mapstructure:"request_headers"`
	ExposeHeaders  []string      `mapstructure:"expose_headers"`
	Credentialed   bool          `mapstructure:"credentialed"`
	MaxAge         int           `mapstructure:"max_age"`
}

// OriginsConfig lists allowed origins in three forms:
// exact origins, origin patterns (e.g. https://*.example.com)
// and regular expressions.
type OriginsConfig struct {
	Exact    []string `mapstructure:"exact"`
	Patterns []string `mapstructure:"patterns"`
	Regexps  []string `mapstructure:"regexps"`
}

// Validate checks the settings that are not validated elsewhere;
// the CORS policy itself is validated when the middleware is built.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen: must not be empty"))
	}
	if err := validateUpstream(c.Upstream); err != nil {
		errs = append(errs, err)
	}
	if c.ShutdownTimeout <= 0 {
		const tmpl = "shutdown_timeout: must be positive, got %s"
		errs = append(errs, fmt.Errorf(tmpl, c.ShutdownTimeout))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		const tmpl = "metrics.path: must start with a slash, got %q"
		errs = append(errs, fmt.Errorf(tmpl, c.Metrics.Path))
	}
	return errors.Join(errs...)
}

func validateUpstream(raw string) error {
	if raw == "" {
		return errors.New("upstream: must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("upstream: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("upstream: %q is not an absolute http(s) URL", raw)
	}
	return nil
}
