// Package main is the entry point for the modinit CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xymatic/modinit/internal/cmd"
	oerrors "github.com/xymatic/modinit/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		// Check if the error contains an ExitError with a specific code
		var exitErr *oerrors.ExitError
		if errors.As(err, &exitErr) {
			// Only print if the command layer hasn't already printed it
			if !exitErr.Printed {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(exitErr.Code)
		}
		// Non-ExitError: unexpected, print it
		fmt.Fprintln(os.Stderr, err)
		os.Exit(oerrors.ExitGeneralError)
	}
}
