package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Azure/appengine-prune/pkg/common/logger"
	"github.com/Azure/appengine-prune/pkg/common/runner"
	"github.com/Azure/appengine-prune/pkg/core/appengine"
	"github.com/Azure/appengine-prune/pkg/domain/errors"
	"github.com/Azure/appengine-prune/pkg/pipeline"
	"github.com/Azure/appengine-prune/pkg/service/config"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// confirmBelow is the keep count under which the user must confirm.
const confirmBelow = 5

// Dependencies are the collaborators the command talks to.
type Dependencies struct {
	Runner runner.CommandRunner
	Clock  clockwork.Clock
	// CheckTool verifies the gcloud binary is usable before any work starts.
	CheckTool func(binary string) error
}

func DefaultDependencies() Dependencies {
	return Dependencies{
		Runner:    &runner.DefaultCommandRunner{},
		Clock:     clockwork.NewRealClock(),
		CheckTool: appengine.CheckGcloudInstalled,
	}
}

type rootOptions struct {
	force       bool
	dryRun      bool
	versionName string
	output      string
	parallelism int
	logLevel    string
	gcloud      string
	envFile     string
}

// NewRootCmd builds the appengine-prune command.
func NewRootCmd(deps Dependencies) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "appengine-prune [flags] PROJECT [PROJECT...] NUM_TO_KEEP",
		Short: "Delete old App Engine versions, keeping the newest per service",
		Long: `appengine-prune lists the deployed versions of every service in each project,
keeps the NUM_TO_KEEP most recently deployed versions of every service and
deletes the rest. A version kept by any service is never deleted.

Exactly one of --force or --dry-run must be given.`,
		Example: `  appengine-prune --dry-run my-project 10
  appengine-prune --force project-a project-b 5
  appengine-prune --force --version-name release my-project 3`,
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		Args:          validateArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd, args, opts, deps)
		},
	}

	flags := rootCmd.Flags()
	flags.SetNormalizeFunc(underscoreToDash)
	flags.BoolVar(&opts.force, "force", false, "Actually delete versions")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Report the versions that would be deleted without deleting them")
	flags.StringVar(&opts.versionName, "version-name", "", "Only consider versions whose name contains this string")
	flags.StringVarP(&opts.output, "output", "o", "", fmt.Sprintf("Report format, one of: %s", strings.Join(pipeline.Formats(), ", ")))
	flags.IntVar(&opts.parallelism, "parallelism", 0, "Maximum number of projects processed at once (0 means all)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.gcloud, "gcloud", "", "Path to the gcloud executable")
	flags.StringVar(&opts.envFile, "env-file", "", "Optional .env file with APPENGINE_PRUNE_* defaults")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Usage("%v", err)
	})

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return run(context.Background(), NewRootCmd(DefaultDependencies()))
}

func run(ctx context.Context, rootCmd *cobra.Command) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	return reportError(rootCmd, err)
}

func underscoreToDash(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func validateArgs(_ *cobra.Command, args []string) error {
	if len(args) < 2 {
		return errors.Usage("expected at least one PROJECT followed by NUM_TO_KEEP, got %d arguments", len(args))
	}
	return nil
}

func parseKeep(arg string) (int, error) {
	keep, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.Usage("NUM_TO_KEEP must be an integer, got %q", arg)
	}
	if keep < 1 {
		return 0, errors.Usage("NUM_TO_KEEP must be at least 1, got %d", keep)
	}
	return keep, nil
}

func runPrune(cmd *cobra.Command, args []string, opts *rootOptions, deps Dependencies) error {
	if opts.force == opts.dryRun {
		if opts.force {
			return errors.Usage("can't specify --force and --dry-run")
		}
		return errors.Usage("must specify one of --force or --dry-run")
	}

	projects := args[:len(args)-1]
	keep, err := parseKeep(args[len(args)-1])
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := pipeline.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	logOut := cmd.OutOrStdout()
	if format.IsMachineReadable() {
		logOut = cmd.ErrOrStderr()
	}
	if err := logger.Init(logger.Options{Level: cfg.LogLevel, Out: logOut, Err: cmd.ErrOrStderr()}); err != nil {
		return errors.New(errors.CodeConfigurationInvalid, "cli", "invalid log level", err)
	}

	if keep < confirmBelow {
		if err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), keep); err != nil {
			return err
		}
	}

	if deps.CheckTool != nil {
		if err := deps.CheckTool(cfg.GcloudPath); err != nil {
			return err
		}
	}

	pruner, err := pipeline.NewPruner(
		appengine.NewGcloudCmdRunner(deps.Runner, cfg.GcloudPath),
		pipeline.Options{
			Keep:         keep,
			NameContains: opts.versionName,
			DryRun:       opts.dryRun,
			Parallelism:  cfg.Parallelism,
		},
		deps.Clock,
	)
	if err != nil {
		return err
	}

	logger.Infof("Pruning %d project(s), keeping %d version(s) per service (run %s)", len(projects), keep, pruner.RunID())
	results := pruner.PruneProjects(cmd.Context(), projects)
	if err := pipeline.EncodeReport(cmd.OutOrStdout(), format, results); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if failed := pipeline.Failed(results); len(failed) > 0 {
		return &projectsFailedError{failed: len(failed), total: len(results), err: pipeline.Err(results)}
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = opts.parallelism
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("gcloud") {
		cfg.GcloudPath = opts.gcloud
	}
}
