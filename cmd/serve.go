package cmd

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/logger"
	"github.com/jobsieve/jobsieve/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run pipeline cycles on a cron schedule until interrupted",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobsieve scheduler", zap.String("version", version))

	orchestrator, cleanup, err := buildOrchestrator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer cleanup()

	sched := scheduler.New(orchestrator, config.Schedule, logger)

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("scheduler stopped", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "shutdown signal received"))
}
