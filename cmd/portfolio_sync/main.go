package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wallet_enricher/internal/app/bootstrap"
	"wallet_enricher/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	app, err := bootstrap.New(config.PathFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: %v\n", err)
		return 1
	}
	defer app.Zap.Sync()

	if err := app.Config.Validate(); err != nil {
		app.Zap.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job, err := app.PortfolioJob()
	if err != nil {
		app.Zap.Error("Failed to set up portfolio job", zap.Error(err))
		return 1
	}

	app.Zap.Info("Portfolio sync starting", zap.String("table", app.Config.Portfolios.Table.FullName()))
	code, _ := app.RunJob(ctx, job)
	return code
}
