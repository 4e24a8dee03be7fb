// Package controller provides output adapters for displaying detection, scoring and instrumentation results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	m "securehls.dev/pkg/securehls/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeCheck StartMode = iota
	ModeEvaluate
	ModeInstrument
	ModeCollect
)

// String returns the title shown for the mode.
func (s StartMode) String() string {
	switch s {
	case ModeCheck:
		return "Check"
	case ModeEvaluate:
		return "Evaluate"
	case ModeInstrument:
		return "Instrument"
	case ModeCollect:
		return "Collect"
	default:
		return "Run"
	}
}

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// Mode returns the configured mode.
func (c StartConfig) Mode() StartMode {
	return c.mode
}

// WithCheckMode sets the UI to direct detection mode.
func WithCheckMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCheck
	}
}

// WithEvaluateMode sets the UI to log-based scoring mode.
func WithEvaluateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeEvaluate
	}
}

// WithInstrumentMode sets the UI to instrumentation mode.
func WithInstrumentMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeInstrument
	}
}

// WithCollectMode sets the UI to log collection mode.
func WithCollectMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCollect
	}
}

func newStartConfig(options ...StartOption) StartConfig {
	cfg := StartConfig{mode: ModeCheck}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// CollectStatus is the outcome of one analyzer run.
type CollectStatus struct {
	Tool  string
	Path  m.Path
	Log   m.Path
	Error error
}

// UI defines the interface for displaying run results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayFindings(ctx context.Context, findings []m.Finding)
	DisplayScore(ctx context.Context, score m.ScoreResult)
	DisplayInstrumentReport(ctx context.Context, report m.InstrumentReport, diffs map[m.Path]string)
	DisplayCollectStatus(ctx context.Context, status CollectStatus)
	DisplayWarning(ctx context.Context, message string)
}

// NewUI returns the TUI when tty is set and the plain UI otherwise. Both
// write to cmd's output.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}

	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}

	return false
}
