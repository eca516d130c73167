package appengine

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/Azure/appengine-prune/pkg/domain/errors"
)

// DeleteResult describes what Executor.Delete did or would have done.
type DeleteResult struct {
	Labels   []string
	Command  []string
	Executed bool
}

// Executor deletes versions in one batch per project.
type Executor struct {
	appengine AppEngineRunner
	dryRun    bool
}

func NewExecutor(appengine AppEngineRunner, dryRun bool) *Executor {
	return &Executor{appengine: appengine, dryRun: dryRun}
}

func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Delete removes labels from project. Labels are de-duplicated and sorted.
// Nothing is run when labels is empty or the executor is in dry-run mode.
func (e *Executor) Delete(ctx context.Context, project string, labels []string) (DeleteResult, error) {
	sorted := sets.List(sets.New(labels...))
	if len(sorted) == 0 {
		return DeleteResult{}, nil
	}
	result := DeleteResult{
		Labels:  sorted,
		Command: e.appengine.DeleteCommand(project, sorted),
	}
	if e.dryRun {
		return result, nil
	}
	if _, err := e.appengine.DeleteVersions(ctx, project, sorted); err != nil {
		return result, errors.New(errors.CodeCommandFailed, domain,
			fmt.Sprintf("failed to delete %d versions from project %s", len(sorted), project), err)
	}
	result.Executed = true
	return result, nil
}
