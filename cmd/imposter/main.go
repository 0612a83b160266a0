package main

import (
	"context"
	"fmt"
	"os"

	"github.com/imposter-project/imposter-expect/internal/adapter"
	"github.com/imposter-project/imposter-expect/internal/adapter/awslambda"
	"github.com/imposter-project/imposter-expect/internal/adapter/httpserver"
	"github.com/imposter-project/imposter-expect/internal/config"
	"github.com/imposter-project/imposter-expect/internal/version"
	"github.com/imposter-project/imposter-expect/pkg/logger"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	port     string
	initFile string
	logLevel string
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "imposter-expect",
		Short: "Programmable HTTP expectation server",
		Long: `imposter-expect answers HTTP requests according to expectations registered
through its admin API, records every request it receives, and verifies
what was received on demand.

Configuration is read from IMPOSTER_* environment variables. Flags
override the corresponding variables.`,
		Example: `  # Start on the default port
  imposter-expect

  # Start on port 1080 with expectations loaded from a file
  imposter-expect --port 1080 --init-file expectations.yaml`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&f.port, "port", "p", "", "Port to listen on (overrides IMPOSTER_PORT)")
	cmd.Flags().StringVarP(&f.initFile, "init-file", "i", "", "YAML or JSON file of expectations to register at startup (overrides IMPOSTER_INIT_FILE)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: TRACE, DEBUG, INFO, WARN or ERROR (overrides IMPOSTER_LOG_LEVEL)")
	return cmd
}

func run(ctx context.Context, f *serveFlags) error {
	if f.logLevel != "" {
		logger.SetLevel(f.logLevel)
	}

	imposterConfig, err := config.LoadImposterConfig()
	if err != nil {
		return err
	}
	applyFlags(imposterConfig, f)

	h, err := adapter.InitialiseImposter(ctx, imposterConfig)
	if err != nil {
		return err
	}

	var a adapter.Adapter
	if adapter.IsLambda() {
		a = awslambda.NewAdapter(h)
	} else {
		a = httpserver.NewAdapter(imposterConfig, h)
	}
	logger.Debugf("starting %s adapter", adapter.DetectMode())
	return a.Start()
}

func applyFlags(imposterConfig *config.ImposterConfig, f *serveFlags) {
	if f.port != "" {
		imposterConfig.ServerPort = f.port
	}
	if f.initFile != "" {
		imposterConfig.InitFile = f.initFile
	}
}
