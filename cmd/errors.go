package cmd

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Azure/appengine-prune/pkg/common/logger"
	"github.com/Azure/appengine-prune/pkg/domain/errors"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// projectsFailedError is returned when at least one project pipeline failed.
// The per-project errors have already been reported.
type projectsFailedError struct {
	failed int
	total  int
	err    error
}

func (e *projectsFailedError) Error() string {
	return fmt.Sprintf("%d of %d project(s) failed: %v", e.failed, e.total, e.err)
}

func (e *projectsFailedError) Unwrap() error {
	return e.err
}

// isUsageError checks if the error was caused by how the tool was invoked
func isUsageError(err error) bool {
	switch errors.CodeOf(err) {
	case errors.CodeUsage, errors.CodeConfigurationInvalid:
		return true
	}
	return false
}

// reportError prints err and maps it to an exit code.
func reportError(cmd *cobra.Command, err error) int {
	if isUsageError(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Run '%s --help' for usage.\n", cmd.CommandPath())
		return exitUsage
	}
	var failed *projectsFailedError
	if stderrors.As(err, &failed) {
		logger.Errorf("%d of %d project(s) failed", failed.failed, failed.total)
		return exitFailed
	}
	logger.Errorf("Error: %v", err)
	return exitFailed
}
