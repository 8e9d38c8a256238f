package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newApp(logger).RunContext(ctx, os.Args); err != nil {
		logger.Error("authctl failed", zap.Error(err))
		os.Exit(1)
	}
}
