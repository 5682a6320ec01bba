// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command gymctl signs members and staff in to Uptown Gym from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/uptowngym/cmd/gymctl/cli"
	"github.com/taibuivan/uptowngym/internal/platform/constants"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, constants.AppVersion)
	stop()

	if err != nil {
		// Failures already shown as notifications only change the exit code.
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintln(os.Stderr, "gymctl:", err)
		}
		os.Exit(1)
	}
}
