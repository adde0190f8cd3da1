package main

import (
	"fmt"

	"github.com/corspolicy/cors/internal/config"
	"github.com/corspolicy/cors/internal/gateway"
	"github.com/spf13/cobra"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if _, err := gateway.NewMiddleware(cfg.CORS, nil, nil); err != nil {
				return fmt.Errorf("cors policy: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
			return nil
		},
	}
}
