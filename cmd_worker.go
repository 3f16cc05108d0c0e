package main

import (
	"context"
	"errors"

	"restaurant-crm-api/src/infrastructure/di"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWorkerCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the campaign processor loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *flags, runWorker)
		},
	}
}

// runWorker drives the processor loop, fed by Redis wake-ups when configured.
func runWorker(ctx context.Context, app *di.ApplicationContext) error {
	wake := make(chan int, 1)
	g, gctx := errgroup.WithContext(ctx)
	if app.WakeQueue != nil {
		g.Go(func() error {
			if err := app.WakeQueue.Listen(gctx, wake); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		app.Processor.Start(gctx, wake)
		return nil
	})
	return g.Wait()
}
