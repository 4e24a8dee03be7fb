package model

import "fmt"

// UnclassifiedPolicy decides how unclassifiable diagnostics are charged.
type UnclassifiedPolicy string

const (
	// PolicyPerLine charges one false positive per unclassified line.
	PolicyPerLine UnclassifiedPolicy = "per-line"
	// PolicyPerMessage charges one false positive per distinct message per file.
	PolicyPerMessage UnclassifiedPolicy = "per-message"
)

// ParseUnclassifiedPolicy validates a policy name. Empty selects PolicyPerLine.
func ParseUnclassifiedPolicy(value string) (UnclassifiedPolicy, error) {
	switch UnclassifiedPolicy(value) {
	case "", PolicyPerLine:
		return PolicyPerLine, nil
	case PolicyPerMessage:
		return PolicyPerMessage, nil
	default:
		return "", fmt.Errorf("unknown unclassified policy %q", value)
	}
}

// FileScore is the confusion breakdown of a single file.
type FileScore struct {
	Path         Path
	Expected     []BugType
	Detected     []BugType
	TP           int
	FP           int
	FN           int
	Unclassified int
	NoEvidence   bool
}

// ScoreResult aggregates confusion counts for one tool over a corpus.
type ScoreResult struct {
	Tool      string
	TP        int
	FP        int
	FN        int
	Precision float64
	Recall    float64
	Files     []FileScore
}
