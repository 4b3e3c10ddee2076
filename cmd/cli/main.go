package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/beaux-riel/openengram-site/internal/client/cli"
	"github.com/beaux-riel/openengram-site/internal/client/config"
	"github.com/beaux-riel/openengram-site/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
