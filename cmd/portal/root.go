package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"complaintportal/internal/configs"
	"complaintportal/internal/pkg/logx"
)

// cliApp carries state shared by all subcommands of one invocation.
type cliApp struct {
	logLevel string
	cfg      *configs.AppConfig
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	cmd := &cobra.Command{
		Use:           "portal",
		Short:         "Campus complaint portal client.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "minimum log level (debug, info, warn, error); default warn, or info for serve")

	cmd.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newComplaintsCmd(app),
		newServeCmd(app),
	)
	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func (a *cliApp) setup(cmd *cobra.Command) error {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	a.cfg = cfg

	level := zerolog.WarnLevel
	if cmd.Name() == "serve" {
		level = zerolog.InfoLevel
	}
	if a.logLevel != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(a.logLevel))
		if err != nil {
			return fmt.Errorf("invalid --log-level %q", a.logLevel)
		}
		level = parsed
	}

	logx.InitGlobalLogger(logx.Options{
		Development: cfg.IsDevelopment(),
		Level:       &level,
		Out:         cmd.ErrOrStderr(),
	})
	logx.Debug("Configuration loaded",
		"environment", cfg.Environment,
		"api_url", cfg.APIURL,
		"storage", cfg.Storage,
	)
	return nil
}
