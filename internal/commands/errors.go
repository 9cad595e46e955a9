package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors returned by Handler.Execute.
const (
	TextCodeValidation = "COMMAND_VALIDATION_FAILED"
	TextCodeCanceled   = "COMMAND_CONTEXT_CANCELED"
	TextCodeTimeout    = "COMMAND_CONTEXT_TIMEOUT"
	TextCodeContext    = "COMMAND_CONTEXT_ERROR"
	TextCodeExecution  = "COMMAND_EXECUTION_FAILED"
)

// tag wraps err once. Errors that already carry a go-errors category keep
// it so a missing collection still maps to not found upstream.
func tag(err error, category goerrors.Category, code, message, commandType string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).
		WithTextCode(code).
		WithMetadata(map[string]any{"command": commandType})
}

func validationError(err error, commandType string) error {
	return tag(err, goerrors.CategoryValidation, TextCodeValidation, "command validation failed", commandType)
}

func contextError(err error, commandType string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return tag(err, goerrors.CategoryCommand, TextCodeCanceled, "command cancelled", commandType)
	case errors.Is(err, context.DeadlineExceeded):
		return tag(err, goerrors.CategoryCommand, TextCodeTimeout, "command deadline exceeded", commandType)
	default:
		return tag(err, goerrors.CategoryCommand, TextCodeContext, "command context error", commandType)
	}
}

func executionError(err error, commandType string) error {
	return tag(err, goerrors.CategoryCommand, TextCodeExecution, "command execution failed", commandType)
}
