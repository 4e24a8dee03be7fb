package model

import "fmt"

// Finding is a single suspected defect reported by a detector.
type Finding struct {
	SourcePath Path    `json:"source_path" yaml:"source_path"`
	Line       int     `json:"line" yaml:"line"`
	BugType    BugType `json:"bug_type" yaml:"bug_type"`
	Message    string  `json:"message" yaml:"message"`
}

// String renders the finding as <path>:<line>: <bugType>: <message>.
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", f.SourcePath, f.Line, f.BugType, f.Message)
}

// DiagnosticRecord is one message extracted from an external tool log.
type DiagnosticRecord struct {
	Line    int // 0 when the tool output carries no line number
	Message string
	Raw     string
}

// Evidence holds what one tool reported for one file.
type Evidence struct {
	Path         Path
	Findings     []Finding
	Unclassified []DiagnosticRecord
}

// BugTypes returns the set of bug types among the classified findings.
func (e *Evidence) BugTypes() BugTypeSet {
	set := BugTypeSet{}
	if e == nil {
		return set
	}

	for _, f := range e.Findings {
		set.Add(f.BugType)
	}

	return set
}
