// Command server runs the LogiTrack gRPC API and the websocket change feed.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/logitrack/internal/server"
	"github.com/dmitrijs2005/logitrack/internal/server/config"
)

func main() {
	app, err := server.NewApp(config.LoadConfig())
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
