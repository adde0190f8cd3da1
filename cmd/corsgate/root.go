package main

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "corsgate",
		Short: "Reverse proxy that adds CORS to an upstream API",
		Long: "corsgate proxies requests to an upstream HTTP API and enforces a CORS\n" +
			"policy on them: it answers preflight requests itself and adds CORS\n" +
			"response headers to the upstream's responses.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to the YAML configuration file (CORSGATE_* environment variables override it)")
	cmd.AddCommand(
		newServeCommand(opts),
		newValidateCommand(opts),
	)
	return cmd
}
