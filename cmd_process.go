package main

import (
	"context"

	"restaurant-crm-api/src/infrastructure/di"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProcessCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Run one processor invocation over due campaigns and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *flags, func(ctx context.Context, app *di.ApplicationContext) error {
				summary, err := app.Processor.Run(ctx)
				if err != nil {
					return err
				}
				app.Logger.Info("Processor invocation finished", zap.Any("summary", summary))
				return nil
			})
		},
	}
}
