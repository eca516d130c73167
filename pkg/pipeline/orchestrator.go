package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Azure/appengine-prune/pkg/common/logger"
)

// PruneProjects runs PruneProject for every distinct project concurrently and
// waits for all of them. One project failing never stops the others. Results
// are returned in the order the projects were first given.
func (p *Pruner) PruneProjects(ctx context.Context, projects []string) []ProjectResult {
	distinct := dedupe(projects)
	if skipped := len(projects) - len(distinct); skipped > 0 {
		logger.Warnf("Ignoring %d duplicate project argument(s)", skipped)
	}
	projects = distinct
	results := make([]ProjectResult, len(projects))

	var eg errgroup.Group
	if p.opts.Parallelism > 0 {
		eg.SetLimit(p.opts.Parallelism)
	}
	for i, project := range projects {
		eg.Go(func() error {
			results[i] = p.PruneProject(ctx, project)
			return nil
		})
	}
	// Workers always return nil; the group only bounds concurrency.
	_ = eg.Wait()
	return results
}

// Failed returns the results whose pipeline failed.
func Failed(results []ProjectResult) []ProjectResult {
	var failed []ProjectResult
	for _, r := range results {
		if r.Outcome == OutcomeFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err joins the errors of all failed projects, or returns nil.
func Err(results []ProjectResult) error {
	var errs []error
	for _, r := range Failed(results) {
		errs = append(errs, fmt.Errorf("project %s: %w", r.Project, r.Err))
	}
	return errors.Join(errs...)
}

func dedupe(projects []string) []string {
	seen := make(map[string]struct{}, len(projects))
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
