package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikitakapustkin/bankctl/internal/cli"
	"github.com/nikitakapustkin/bankctl/pkg/otel"
)

const shutdownTimeoutSeconds = 5

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runErr := cli.ExecuteContext(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		shutdownTimeoutSeconds*time.Second,
	)
	defer shutdownCancel()

	if shutdownErr := otel.Shutdown(shutdownCtx); shutdownErr != nil {
		fmt.Fprintf(os.Stderr, "failed to shutdown tracer provider: %v\n", shutdownErr)
	}

	if runErr != nil {
		os.Exit(1)
	}
}
