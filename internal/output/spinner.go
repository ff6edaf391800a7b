package output

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner executes action while a spinner titled title is shown.
// When stdout is not a TTY the action runs directly.
func RunWithSpinner(ctx context.Context, title string, action func(context.Context) error) error {
	if !IsTTY() {
		return action(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- action(ctx)
	}()

	var actionErr error
	spinnerErr := spinner.New().
		Title(title).
		Context(ctx).
		Action(func() {
			actionErr = <-errCh
		}).
		Run()

	if spinnerErr != nil {
		return fmt.Errorf("spinner error: %w", spinnerErr)
	}

	return actionErr
}
