package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheCowboyAI/cim-keys-sub002/internal/app"
	"github.com/TheCowboyAI/cim-keys-sub002/internal/config"
)

func main() {
	mode := flag.String("mode", "", "run mode: bootstrap or server (overrides CIMKEYS_MODE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		os.Exit(app.ExitValidationFailed)
	}

	if *mode != "" {
		cfg.Mode = *mode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	code, err := app.Run(ctx, cfg)
	if err != nil {
		slog.Error("fatal", "error", err)
	}
	os.Exit(code)
}
