package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"restaurant-crm-api/src/infrastructure/di"
	"restaurant-crm-api/src/infrastructure/rest/routes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(flags *rootFlags) *cobra.Command {
	var withWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, and the campaign worker unless --worker=false",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *flags, func(ctx context.Context, app *di.ApplicationContext) error {
				return runServe(ctx, app, withWorker)
			})
		},
	}
	cmd.Flags().BoolVar(&withWorker, "worker", true, "Also run the campaign processor loop in this process")
	return cmd
}

func runServe(ctx context.Context, app *di.ApplicationContext, withWorker bool) error {
	server := setupServer(routes.NewRouter(app), app.Config.Server.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("Server starting", zap.String("port", app.Config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		app.Logger.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})
	if withWorker {
		g.Go(func() error { return runWorker(gctx, app) })
	}
	return g.Wait()
}

func setupServer(router http.Handler, port string) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
