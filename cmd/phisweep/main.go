package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"phisweep/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		fmt.Fprintln(os.Stderr, "phisweep - stopped")
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when the metadata store is unreachable and 1 for any other
// failure.
func exitCode(err error) int {
	if services.IsFatal(err) {
		return 2
	}
	return 1
}
