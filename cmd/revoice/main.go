package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"revoice/internal/services"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

// exitCode is 2 for bad input so scripts can tell it apart from a stage failure.
func exitCode(err error) int {
	if services.IsClientError(err) {
		return 2
	}
	return 1
}
