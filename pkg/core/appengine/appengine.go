package appengine

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/Azure/appengine-prune/pkg/common/runner"
	"github.com/Azure/appengine-prune/pkg/domain/errors"
)

const domain = "appengine"

// DefaultGcloudBinary is the executable used when no override is configured.
const DefaultGcloudBinary = "gcloud"

// AppEngineRunner wraps the gcloud commands used to inspect and prune versions.
type AppEngineRunner interface {
	ListVersions(ctx context.Context, project string) (string, error)
	DeleteVersions(ctx context.Context, project string, labels []string) (string, error)
	// DeleteCommand returns the command line DeleteVersions would run.
	DeleteCommand(project string, labels []string) []string
}

type GcloudCmdRunner struct {
	runner runner.CommandRunner
	binary string
}

var _ AppEngineRunner = &GcloudCmdRunner{}

func NewGcloudCmdRunner(runner runner.CommandRunner, binary string) AppEngineRunner {
	if binary == "" {
		binary = DefaultGcloudBinary
	}
	return &GcloudCmdRunner{
		runner: runner,
		binary: binary,
	}
}

func (g *GcloudCmdRunner) ListVersions(ctx context.Context, project string) (string, error) {
	return g.runner.RunCommand(ctx, g.ListCommand(project)...)
}

func (g *GcloudCmdRunner) ListCommand(project string) []string {
	return []string{g.binary, "--project", project, "app", "versions", "list"}
}

func (g *GcloudCmdRunner) DeleteVersions(ctx context.Context, project string, labels []string) (string, error) {
	return g.runner.RunCommand(ctx, g.DeleteCommand(project, labels)...)
}

func (g *GcloudCmdRunner) DeleteCommand(project string, labels []string) []string {
	args := []string{g.binary, "--quiet", "--project", project, "app", "versions", "delete"}
	return append(args, labels...)
}

// CheckGcloudInstalled reports whether binary can be found on PATH.
func CheckGcloudInstalled(binary string) error {
	if binary == "" {
		binary = DefaultGcloudBinary
	}
	if _, err := exec.LookPath(binary); err != nil {
		return errors.New(errors.CodeToolNotFound, domain, fmt.Sprintf("%s executable not found in PATH. Please install the Google Cloud SDK or point --gcloud at it", binary), err)
	}
	return nil
}
