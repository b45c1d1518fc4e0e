package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation   = "COMMAND_VALIDATION_FAILED"
	codeCanceled     = "COMMAND_CONTEXT_CANCELED"
	codeTimeout      = "COMMAND_CONTEXT_TIMEOUT"
	codeContextError = "COMMAND_CONTEXT_ERROR"
	codeExecute      = "COMMAND_EXECUTION_FAILED"
)

var contextFailures = []struct {
	target  error
	code    string
	message string
}{
	{context.Canceled, codeCanceled, "command cancelled"},
	{context.DeadlineExceeded, codeTimeout, "command deadline exceeded"},
}

// Errors that already carry a go-errors category (queue full, generation
// failed) pass through every wrapper unchanged.

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.FromOzzoValidation(err, "command validation failed").WithTextCode(codeValidation)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	for _, failure := range contextFailures {
		if errors.Is(err, failure.target) {
			return goerrors.Wrap(err, goerrors.CategoryCommand, failure.message).WithTextCode(failure.code)
		}
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").WithTextCode(codeContextError)
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").WithTextCode(codeExecute)
}
