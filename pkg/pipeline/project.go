package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/Azure/appengine-prune/pkg/common/logger"
	"github.com/Azure/appengine-prune/pkg/core/appengine"
	"github.com/Azure/appengine-prune/pkg/core/retention"
	"github.com/Azure/appengine-prune/pkg/domain/errors"
)

// Options configures a Pruner.
type Options struct {
	// Keep is the number of most recently deployed versions kept per service.
	Keep int
	// NameContains restricts pruning to versions whose label contains it.
	NameContains string
	// DryRun reports deletions without running them.
	DryRun bool
	// Parallelism bounds how many projects are processed at once. 0 means
	// all projects run concurrently.
	Parallelism int
}

func (o Options) Validate() error {
	if o.Keep < 1 {
		return errors.Usage("number of versions to keep must be at least 1, got %d", o.Keep)
	}
	if o.Parallelism < 0 {
		return errors.Usage("parallelism must not be negative, got %d", o.Parallelism)
	}
	return nil
}

type Outcome string

const (
	OutcomeDeleted         Outcome = "deleted"
	OutcomeDryRun          Outcome = "dry-run"
	OutcomeNothingToDelete Outcome = "nothing-to-delete"
	OutcomeFailed          Outcome = "failed"
)

// ProjectResult is the outcome of pruning one project.
type ProjectResult struct {
	Project  string
	Outcome  Outcome
	Services int
	Versions int
	// Labels are the versions deleted, or that would be deleted in dry-run
	// mode, in sorted order.
	Labels   []string
	Command  []string
	Duration time.Duration
	Err      error
}

// VersionLister reads the deployed versions of a project.
type VersionLister interface {
	ListVersions(ctx context.Context, project string) (*appengine.ServiceVersions, error)
}

// VersionDeleter deletes a batch of versions from a project.
type VersionDeleter interface {
	Delete(ctx context.Context, project string, labels []string) (appengine.DeleteResult, error)
}

// Pruner runs list, select and delete for projects.
type Pruner struct {
	lister  VersionLister
	deleter VersionDeleter
	opts    Options
	clock   clockwork.Clock
	runID   string
}

// NewPruner builds a Pruner that reaches App Engine through ae.
func NewPruner(ae appengine.AppEngineRunner, opts Options, clock clockwork.Clock) (*Pruner, error) {
	return newPruner(appengine.NewLister(ae), appengine.NewExecutor(ae, opts.DryRun), opts, clock)
}

func newPruner(lister VersionLister, deleter VersionDeleter, opts Options, clock clockwork.Clock) (*Pruner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pruner{
		lister:  lister,
		deleter: deleter,
		opts:    opts,
		clock:   clock,
		runID:   uuid.NewString(),
	}, nil
}

// RunID identifies this pruner's run in log output.
func (p *Pruner) RunID() string {
	return p.runID
}

// PruneProject lists, selects and deletes versions for a single project.
// Failures are recorded in the result, never returned.
func (p *Pruner) PruneProject(ctx context.Context, project string) ProjectResult {
	start := p.clock.Now()
	log := logger.With("project", project, "run_id", p.runID)
	result := ProjectResult{Project: project}
	finish := func() ProjectResult {
		result.Duration = p.clock.Since(start)
		return result
	}

	log.Info().Msg("Listing versions")
	versions, err := p.lister.ListVersions(ctx, project)
	if err != nil {
		log.Error().Err(err).Msg("Listing versions failed")
		result.Outcome = OutcomeFailed
		result.Err = err
		return finish()
	}
	result.Services = versions.Len()
	result.Versions = versions.VersionCount()

	sel := retention.Select(versions, retention.Policy{
		Keep:         p.opts.Keep,
		NameContains: p.opts.NameContains,
	})
	for _, service := range versions.Services() {
		log.Debug().
			Str("service", service).
			Strs("delete", sets.List(sel.PerService[service])).
			Msg("Selected versions")
	}
	if sel.Delete.Len() == 0 {
		log.Info().Int("versions", result.Versions).Msg("Nothing to delete")
		result.Outcome = OutcomeNothingToDelete
		return finish()
	}

	deleted, err := p.deleter.Delete(ctx, project, sets.List(sel.Delete))
	result.Labels = deleted.Labels
	result.Command = deleted.Command
	if err != nil {
		log.Error().Err(err).Msg("Deleting versions failed")
		result.Outcome = OutcomeFailed
		result.Err = err
		return finish()
	}
	if deleted.Executed {
		log.Info().Str("command", strings.Join(deleted.Command, " ")).Msgf("Deleted %d versions", len(deleted.Labels))
		result.Outcome = OutcomeDeleted
	} else {
		log.Info().Str("command", strings.Join(deleted.Command, " ")).Msgf("Dry run, would delete %d versions", len(deleted.Labels))
		result.Outcome = OutcomeDryRun
	}
	return finish()
}
