package main

import (
	"context"
	"log"
	"os"

	"github.com/hmmelton/bytechef/internal/client/cli"
	"github.com/hmmelton/bytechef/internal/client/config"
	"github.com/hmmelton/bytechef/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewTextLogger(os.Stderr)
	app, err := cli.NewApp(cfg, logger)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
