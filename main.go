package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restaurant-crm-api/src/infrastructure/config"
	"restaurant-crm-api/src/infrastructure/di"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootFlags struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "restaurant-crm-api",
		Short:        "Restaurant CRM API and scheduled WhatsApp campaign engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("CONFIG_FILE"), "Optional YAML config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCommand(flags),
		newWorkerCommand(flags),
		newProcessCommand(flags),
		newMigrateCommand(flags),
	)
	return root
}

// bootstrap loads the dotenv file, the configuration and the logger.
func bootstrap(flags rootFlags) (*config.Config, *logger.Logger, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("loading %s: %w", flags.envFile, err)
		}
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, err
	}

	var loggerInstance *logger.Logger
	if cfg.IsDevelopment() {
		loggerInstance, err = logger.NewDevelopmentLogger()
	} else {
		loggerInstance, err = logger.NewLogger()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing logger: %w", err)
	}
	return cfg, loggerInstance, nil
}

func syncLogger(loggerInstance *logger.Logger) {
	_ = loggerInstance.Log.Sync()
}

// withApp wires the application, cancels ctx on SIGINT/SIGTERM and closes
// every backend once fn returns.
func withApp(parent context.Context, flags rootFlags, fn func(ctx context.Context, app *di.ApplicationContext) error) error {
	cfg, loggerInstance, err := bootstrap(flags)
	if err != nil {
		return err
	}
	defer syncLogger(loggerInstance)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loggerInstance.Info("Starting restaurant-crm-api", zap.String("env", cfg.Server.Env), zap.String("driver", cfg.Database.Driver))
	app, err := di.SetupDependencies(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error("Error initializing application context", zap.Error(err))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			loggerInstance.Warn("Error releasing resources", zap.Error(err))
		}
	}()
	return fn(ctx, app)
}
