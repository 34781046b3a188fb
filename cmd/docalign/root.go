package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/config"
	logpkg "github.com/kailas-cloud/docalign/internal/logger"
	"github.com/kailas-cloud/docalign/internal/version"
)

// commandContext carries lazily initialized state shared by subcommands.
type commandContext struct {
	cfg    *config.Config
	logger *zap.Logger
	runID  string
}

// setup loads the environment config and builds the run-scoped logger.
func (c *commandContext) setup() error {
	if c.cfg != nil {
		return nil
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c.runID = uuid.NewString()
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	c.logger = logger.With(zap.String("run_id", c.runID))
	c.cfg = &cfg

	c.logger.Info("docalign starting",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env))
	return nil
}

func (c *commandContext) close() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "docalign",
		Short:         "Neural document alignment engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return ctx.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newAlignCommand(ctx))
	rootCmd.AddCommand(newEmbedCommand(ctx))
	rootCmd.AddCommand(newEvaluateCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
