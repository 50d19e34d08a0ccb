package cli

import (
	"errors"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/errs"
)

// Exit codes, per spec §6: 0 on success (including a keep_going run that
// logged per-stream errors), 2 when the config fails to load or validate,
// 1 when a run under fail_fast was cancelled by a stream failure.
const (
	ExitOK           = 0
	ExitInvalidConfig = 2
	ExitRuntimeFailure = 1
)

// errRuntimeFailure is returned by runRun when FailFast cancelled the run
// due to a stream error, so Execute can map it to ExitRuntimeFailure
// without runRun calling os.Exit itself.
var errRuntimeFailure = errors.New("run failed: one or more streams errored under fail-fast")

func exitCodeFor(err error) int {
	var configErr *errs.ConfigError
	var valErrs *config.ValidationErrors
	switch {
	case errors.As(err, &configErr),
		errors.As(err, &valErrs),
		errors.Is(err, config.ErrFileNotFound),
		errors.Is(err, config.ErrPermissionDenied),
		errors.Is(err, config.ErrInvalidJSON),
		errors.Is(err, config.ErrInvalidYAML),
		errors.Is(err, config.ErrEmptyFile):
		return ExitInvalidConfig
	case errors.Is(err, errRuntimeFailure):
		return ExitRuntimeFailure
	default:
		return ExitRuntimeFailure
	}
}
