package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultListen          = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultMetricsPath     = "/metrics"
)

// setDefaults registers a default for every key, which also lets
// AutomaticEnv resolve keys that are absent from the configuration file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("upstream", "")
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", DefaultMetricsPath)

	v.SetDefault("cors.origins.exact", []string{})
	v.SetDefault("cors.origins.patterns", []string{})
	v.SetDefault("cors.origins.regexps", []string{})
	v.SetDefault("cors.methods", []string{})
	v.SetDefault("cors.request_headers", []string{})
	v.SetDefault("cors.expose_headers", []string{})
	v.SetDefault("cors.credentialed", false)
	v.SetDefault("cors.max_age", 0)
}
