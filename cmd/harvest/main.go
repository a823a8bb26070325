package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/harvest/internal/cli"
	"github.com/temirov/harvest/internal/utils"
)

const (
	loggerInitializationFailedFormat = "failed to initialize logger: %v\n"
	applicationExecutionFailed       = "harvest failed"
)

// main is the entry point for the harvest command.
func main() {
	os.Exit(run())
}

func run() int {
	logger, level, err := utils.NewApplicationLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, loggerInitializationFailedFormat, err)
		return utils.ExitCodeFailure
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, logger, &level); err != nil {
		logger.Error(applicationExecutionFailed, zap.Error(err))
		return utils.ExitCode(err)
	}
	return utils.ExitCodeSuccess
}
