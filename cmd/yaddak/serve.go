package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yaddak/yaddak/internal/bootstrap"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate, seed the bestiary and serve HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return app.Serve(ctx)
			})
		},
	}
}
