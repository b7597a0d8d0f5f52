package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/posqueue/internal/buildinfo"
	"github.com/dmitrijs2005/posqueue/internal/logging"
	"github.com/dmitrijs2005/posqueue/internal/server"
	"github.com/dmitrijs2005/posqueue/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "intake server stopped with error", "error", err)
	}
}
