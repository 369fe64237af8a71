package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yaddak/yaddak/internal/bootstrap"
	"github.com/yaddak/yaddak/internal/common/config"
	"github.com/yaddak/yaddak/internal/common/logger"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "yaddak",
		Short:        "yaddak identity and bestiary service",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warning, error, critical)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// withApp loads configuration, builds the app and runs fn with a context
// cancelled on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogDir, bootstrap.ServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Errorf("failed to initialize application: %v", err)
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}
