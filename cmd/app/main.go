// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"learning-access/internal/config"
	"learning-access/internal/infra/logging"
)

// set via -ldflags at build time
var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	cfgPath string
	dev     bool
}

// load reads the config and builds the process logger.
func (o *rootOptions) load() (*config.Config, *zerolog.Logger, error) {
	cfg, err := config.LoadConfig(o.cfgPath, o.dev)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}
	return cfg, logger, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "learning-access",
		Short:         "Access code redemption and learner dashboard service",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgPath, "config", "config.yaml", "path to YAML config file")
	root.PersistentFlags().BoolVar(&opts.dev, "dev", false, "enable developer mode (verbose logs, unredacted codes)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newCodesCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
