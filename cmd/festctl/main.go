package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/fest/internal/festctl"
	"github.com/okian/fest/pkg/logger"
)

func main() {
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := festctl.Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
