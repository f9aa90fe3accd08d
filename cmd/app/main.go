package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"erp-backend/internal/adapters/cli"
	"erp-backend/internal/adapters/repl"
	"erp-backend/internal/bootstrap"
	"erp-backend/internal/config"
	"erp-backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.StoreDriver == config.DriverMemory {
		log.Println("Warning: STORE_DRIVER=memory, changes are discarded on exit")
	}

	zl, err := logger.New(logger.Config{
		ServiceName: "erp-cli",
		Environment: cfg.Environment,
		Level:       "warn",
		Format:      "console",
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg, zl, nil)
	if err != nil {
		log.Fatalf("Unable to start: %v", err)
	}
	defer rt.Close()

	if len(os.Args) < 2 {
		repl.Run(ctx, rt.App, bufio.NewReader(os.Stdin), os.Stdout)
		return
	}

	if err := cli.Run(ctx, rt.App, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		rt.Close()
		log.Fatalf("%v", err)
	}
}
