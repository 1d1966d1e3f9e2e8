package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/logitrack/internal/client/cli"
	"github.com/dmitrijs2005/logitrack/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
