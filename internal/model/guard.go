package model

import "fmt"

// Guard asks the instrumenter to protect the statement whose exact text is
// Anchor with a check on Predicate.
type Guard struct {
	Anchor    string  `json:"anchor" yaml:"anchor"`
	Predicate string  `json:"predicate" yaml:"predicate"`
	BugType   BugType `json:"bug_type" yaml:"bug_type"`
}

// SkippedGuard records a guard that could not be applied.
type SkippedGuard struct {
	Guard  Guard  `json:"guard" yaml:"guard"`
	Reason string `json:"reason" yaml:"reason"`
}

// Error implements error so a skipped guard can travel through error paths.
func (s SkippedGuard) Error() string {
	return fmt.Sprintf("skipped %s guard before %q: %s", s.Guard.BugType, s.Guard.Anchor, s.Reason)
}

// InstrumentResult is the outcome of instrumenting one kernel.
type InstrumentResult struct {
	Source          []byte
	Function        string
	GuardedFunction string
	Flag            string
	Applied         []Guard
	Skipped         []SkippedGuard
	Diff            string
}

// GuardStatus is the per-guard status recorded in an instrumentation report.
type GuardStatus string

const (
	// GuardApplied means the guard was inserted.
	GuardApplied GuardStatus = "applied"
	// GuardSkipped means the anchor was not found.
	GuardSkipped GuardStatus = "skipped"
)

// GuardOutcome is one line of an instrumentation report.
type GuardOutcome struct {
	Guard  Guard       `json:"guard" yaml:"guard"`
	Status GuardStatus `json:"status" yaml:"status"`
	Reason string      `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// InstrumentEntry reports what happened to one kernel.
type InstrumentEntry struct {
	Source   Path           `json:"source" yaml:"source"`
	Output   Path           `json:"output,omitempty" yaml:"output,omitempty"`
	Function string         `json:"function" yaml:"function"`
	Guarded  string         `json:"guarded_function,omitempty" yaml:"guarded_function,omitempty"`
	Guards   []GuardOutcome `json:"guards" yaml:"guards"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`

	// SourceHash and OutputHash fingerprint the kernel and its guarded
	// variant so a later run can tell whether the variant is stale.
	SourceHash string `json:"source_hash,omitempty" yaml:"source_hash,omitempty"`
	OutputHash string `json:"output_hash,omitempty" yaml:"output_hash,omitempty"`
	// Unchanged marks a variant kept from the previous run.
	Unchanged bool `json:"unchanged,omitempty" yaml:"unchanged,omitempty"`
}

// InstrumentReport is the per-run record of the instrument command.
type InstrumentReport struct {
	RunID   string            `json:"run_id" yaml:"run_id"`
	Entries []InstrumentEntry `json:"entries" yaml:"entries"`
}

// SkippedCount returns how many guards were skipped in the run.
func (r InstrumentReport) SkippedCount() int {
	n := 0

	for _, e := range r.Entries {
		for _, g := range e.Guards {
			if g.Status == GuardSkipped {
				n++
			}
		}
	}

	return n
}
