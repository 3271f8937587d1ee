package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/kickoff/internal/matchday"
	"github.com/okian/kickoff/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logs go to stderr so stdout stays readable.
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := matchday.App(os.Stdout).RunContext(ctx, os.Args); err != nil {
		os.Stderr.WriteString("matchday: " + err.Error() + "\n")
		os.Exit(1)
	}
}
