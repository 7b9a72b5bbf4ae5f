/*
Package main is the entry point of the complaint portal client.

Every subcommand loads configuration from the environment, initializes the global logger,
opens the durable session storage and performs the session store's startup read before it
does its own work. Interrupt signals cancel the running command.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"complaintportal/internal/app/gate"
	"complaintportal/internal/pkg/errs"
)

// Exit codes.
const (
	exitOK           = 0
	exitFailure      = 1
	exitAccessDenied = 3
	exitCanceled     = 130
)

func main() {
	code := runMain(Execute, os.Stderr)
	if code != exitOK {
		os.Exit(code)
	}
}

func runMain(execute func() error, stderr io.Writer) int {
	if err := execute(); err != nil {
		return exitCodeForError(err, stderr)
	}
	return exitOK
}

func exitCodeForError(err error, stderr io.Writer) int {
	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.silent {
			fmt.Fprintln(stderr, errs.UserMessage(resolveErrorForExitError(ee, err)))
		}
		return ee.code
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "canceled")
		return exitCanceled
	}

	if errors.Is(err, gate.ErrAccessDenied) {
		fmt.Fprintln(stderr, err)
		return exitAccessDenied
	}

	fmt.Fprintln(stderr, errs.UserMessage(err))
	return exitFailure
}

func resolveErrorForExitError(ee *exitError, fallback error) error {
	if ee != nil && ee.err != nil {
		return ee.err
	}
	return fallback
}
