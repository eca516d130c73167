package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/Azure/appengine-prune/pkg/common/logger"
)

// CommandRunner is an interface for executing commands and getting the output/error
type CommandRunner interface {
	// RunCommand runs args[0] with args[1:] and returns its stdout.
	RunCommand(ctx context.Context, args ...string) (string, error)
}

// CommandError is returned when a command cannot be started or exits non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", strings.Join(e.Args, " "), e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\nStderr: " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type DefaultCommandRunner struct{}

var _ CommandRunner = &DefaultCommandRunner{}

func (d *DefaultCommandRunner) RunCommand(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("no command given")
	}
	logger.Debugf("Running command: %s", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	logger.Debugf("Command output: %s", stdout.String())
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.String(), &CommandError{
			Args:     args,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return stdout.String(), nil
}

// FakeResponse is a scripted result for FakeCommandRunner.
type FakeResponse struct {
	Output string
	ErrStr string
}

// FakeCommandRunner returns scripted output. Responses are matched by the
// longest registered prefix of the joined command line; Output/ErrStr are the
// fallback. It is safe for concurrent use.
type FakeCommandRunner struct {
	Output    string
	ErrStr    string
	Responses map[string]FakeResponse

	mu    sync.Mutex
	calls [][]string
}

var _ CommandRunner = &FakeCommandRunner{}

func (f *FakeCommandRunner) RunCommand(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	f.mu.Unlock()

	resp := FakeResponse{Output: f.Output, ErrStr: f.ErrStr}
	line := strings.Join(args, " ")
	best := -1
	for prefix, r := range f.Responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > best {
			best = len(prefix)
			resp = r
		}
	}

	if resp.ErrStr != "" {
		return resp.Output, &CommandError{
			Args:     args,
			ExitCode: 1,
			Stderr:   resp.ErrStr,
			Err:      errors.New(resp.ErrStr),
		}
	}
	return resp.Output, nil
}

// Calls returns the commands run so far, in call order.
func (f *FakeCommandRunner) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsWithPrefix returns the commands whose joined line starts with prefix.
func (f *FakeCommandRunner) CallsWithPrefix(prefix string) [][]string {
	var out [][]string
	for _, c := range f.Calls() {
		if strings.HasPrefix(strings.Join(c, " "), prefix) {
			out = append(out, c)
		}
	}
	return out
}
