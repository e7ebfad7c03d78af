package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mqlite/internal/queue"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, errorMessage(err))
		}
		os.Exit(1)
	}
}

// errorMessage adds a retry hint for failures that may clear on their own.
func errorMessage(err error) string {
	if queue.Retryable(err) {
		return fmt.Sprintf("%v\nhint: the store may be busy or locked; retry the command", err)
	}
	return err.Error()
}
