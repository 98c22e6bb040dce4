package cli

import (
	"errors"
	"fmt"

	"github.com/elasticnow/elasticnow/internal/config"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/service"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitRuntime = 2
)

// ErrNotInteractive is returned by prompts when stdin is not a terminal.
var ErrNotInteractive = errors.New("an interactive terminal is required to choose")

// ExitError carries the exit code a command failure maps to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func usageErr(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

func runtimeErr(err error) error {
	if errors.Is(err, config.ErrNotFound) {
		err = fmt.Errorf("%w; run `elasticnow setup` first", err)
	}
	return &ExitError{Code: ExitRuntime, Err: err}
}

// classify wraps an error returned by a use case with its exit code.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}
	if domain.IsValidation(err) || errors.Is(err, service.ErrNoTemplates) || errors.Is(err, ErrNotInteractive) {
		return usageErr(err)
	}
	return runtimeErr(err)
}

// ExitCode maps an error from the root command to a process exit code.
// Errors raised by cobra itself, such as unknown or missing flags, are
// usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsage
}
