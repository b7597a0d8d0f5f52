package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/posqueue/internal/buildinfo"
	"github.com/dmitrijs2005/posqueue/internal/client/cli"
	"github.com/dmitrijs2005/posqueue/internal/client/config"
	"github.com/dmitrijs2005/posqueue/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "terminal stopped with error", "error", err)
	}
	if err := app.Close(); err != nil {
		logger.Error(ctx, "shutdown error", "error", err)
	}
}
