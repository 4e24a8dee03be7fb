package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrToolTimeout is returned when an external analyzer exceeds its wait budget.
var ErrToolTimeout = errors.New("tool run timed out")

// ErrEmptyCommand is returned when no command line was configured.
var ErrEmptyCommand = errors.New("empty tool command")

// ToolRunnerAdapter abstracts running external static analyzers.
type ToolRunnerAdapter interface {
	// Run executes command in workDir and returns the combined stdout/stderr.
	// A non-zero exit status is not an error: analyzers exit non-zero when
	// they report diagnostics, and the log is what matters.
	Run(ctx context.Context, workDir string, command []string) (output string, err error)
}

// LocalToolRunnerAdapter provides a concrete implementation using os/exec.
type LocalToolRunnerAdapter struct {
	timeout time.Duration
}

// DefaultToolTimeout bounds a single analyzer run.
const DefaultToolTimeout = 60 * time.Second

// NewLocalToolRunnerAdapter constructs a LocalToolRunnerAdapter. timeout only
// applies to calls whose context has no deadline of its own; a non-positive
// value selects DefaultToolTimeout.
func NewLocalToolRunnerAdapter(timeout time.Duration) *LocalToolRunnerAdapter {
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}

	return &LocalToolRunnerAdapter{
		timeout: timeout,
	}
}

// Run executes the analyzer with a bounded wait. The caller's deadline wins
// over the adapter's default.
func (a *LocalToolRunnerAdapter) Run(ctx context.Context, workDir string, command []string) (string, error) {
	if len(command) == 0 {
		return "", ErrEmptyCommand
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok {
		runCtx, cancel = context.WithTimeout(ctx, a.timeout)
	}
	defer cancel()

	//nolint:gosec // command lines come from the user's own configuration
	cmd := exec.CommandContext(runCtx, command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String() + stderr.String()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return output, fmt.Errorf("%s: %w", command[0], ErrToolTimeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, nil
		}

		return output, fmt.Errorf("run %s: %w", strings.Join(command, " "), err)
	}

	return output, nil
}
