package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yaddak/yaddak/internal/bootstrap"
)

func NewMigrateCmd() *cobra.Command {
	var withSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Migrate(ctx); err != nil {
					return err
				}
				cmd.Println("migrations applied")

				if !withSeed {
					return nil
				}
				inserted, err := app.Seed(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("seeded %d monsters\n", inserted)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withSeed, "seed", false, "also import the bestiary seed file")
	return cmd
}
