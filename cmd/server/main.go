package main

import (
	"context"
	"log"

	"github.com/hmmelton/bytechef/internal/server"
	"github.com/hmmelton/bytechef/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
