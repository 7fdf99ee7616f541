package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/postpulse/internal/config"
	"github.com/okian/postpulse/pkg/logger"
)

// rootOptions is shared by every subcommand. It is filled in by the
// persistent pre-run hook before any RunE executes.
type rootOptions struct {
	envFile  string
	timezone string

	cfg *config.Config
	loc *time.Location
	log logger.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a social media post export offline",
		Long: `Analyze reads a CSV or XLSX post export, keeps the posted rows and
computes the seven engagement reports. Configuration comes from POSTPULSE_*
environment variables, optionally seeded from a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration (empty to skip)")
	cmd.PersistentFlags().StringVar(&opts.timezone, "timezone", "", "IANA zone for naive timestamps and the schedule grid")

	cmd.AddCommand(
		newReportCommand(opts),
		newPromptsCommand(opts),
		newExportCommand(opts),
		newAskCommand(opts),
	)
	return cmd
}

func (o *rootOptions) init(ctx context.Context) error {
	// A missing .env is normal; a malformed one is not.
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.timezone != "" {
		cfg.Timezone = o.timezone
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Logs go to stderr so tables and prompts can be piped.
	if err := logger.InitWithFormat(cfg.LogFormat, os.Stderr); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	o.cfg = cfg
	o.loc = cfg.Location()
	o.log = logger.Named("analyze")
	return nil
}

func (o *rootOptions) logr() logger.Logger {
	if o.log == nil {
		return logger.Nop()
	}
	return o.log
}
