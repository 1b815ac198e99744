// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/root-remediator/src/cli"
	"github.com/H0llyW00dzZ/root-remediator/src/logger"
	verpkg "github.com/H0llyW00dzZ/root-remediator/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	// Signal notices are written even without --debug.
	log := logger.NewCLILogger(logger.DefaultPrefix, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version)
	}()

	select {
	case err := <-done:
		if err != nil {
			// Cobra has already printed the error.
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Println("Operation cancelled by signal. Exiting...")
		// Let the store close before exiting.
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
		os.Exit(130) // Standard exit code for SIGINT
	}
}
