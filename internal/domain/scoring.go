package domain

import (
	"sort"

	m "securehls.dev/pkg/securehls/internal/model"
)

// ScoringEngine reconciles evidence with the ground truth.
type ScoringEngine struct {
	Policy m.UnclassifiedPolicy
}

// NewScoringEngine creates a ScoringEngine. An empty policy selects
// m.PolicyPerLine.
func NewScoringEngine(policy m.UnclassifiedPolicy) *ScoringEngine {
	if policy == "" {
		policy = m.PolicyPerLine
	}

	return &ScoringEngine{Policy: policy}
}

// Evaluate computes confusion counts for one tool. Every benchmark is scored;
// evidence for files outside the corpus is scored against an empty set.
// A file missing from evidence has no evidence and every expected type is a
// false negative.
func (e *ScoringEngine) Evaluate(tool string, store *GroundTruthStore, evidence map[m.Path]*m.Evidence) m.ScoreResult {
	byPath := make(map[m.Path]*m.Evidence, len(evidence))
	for p, ev := range evidence {
		byPath[NormalizePath(p)] = ev
	}

	paths := make([]m.Path, 0, store.Len()+len(byPath))
	inStore := make(map[m.Path]struct{}, store.Len())

	for _, b := range store.Benchmarks() {
		paths = append(paths, b.File)
		inStore[b.File] = struct{}{}
	}

	var extra []m.Path

	for p := range byPath {
		if _, ok := inStore[p]; !ok {
			extra = append(extra, p)
		}
	}

	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	paths = append(paths, extra...)

	result := m.ScoreResult{Tool: tool, Files: make([]m.FileScore, 0, len(paths))}

	for _, p := range paths {
		fs := e.scoreFile(p, store.BugTypesOf(p), byPath[p])

		result.TP += fs.TP
		result.FP += fs.FP
		result.FN += fs.FN
		result.Files = append(result.Files, fs)
	}

	result.Precision = ratio(result.TP, result.TP+result.FP)
	result.Recall = ratio(result.TP, result.TP+result.FN)

	return result
}

func (e *ScoringEngine) scoreFile(p m.Path, expected m.BugTypeSet, ev *m.Evidence) m.FileScore {
	detected := ev.BugTypes()

	fs := m.FileScore{
		Path:       p,
		Expected:   expected.Sorted(),
		Detected:   detected.Sorted(),
		NoEvidence: ev == nil,
	}

	for t := range expected {
		if detected.Has(t) {
			fs.TP++
		} else {
			fs.FN++
		}
	}

	for t := range detected {
		if !expected.Has(t) {
			fs.FP++
		}
	}

	fs.Unclassified = e.unclassified(ev)
	fs.FP += fs.Unclassified

	return fs
}

func (e *ScoringEngine) unclassified(ev *m.Evidence) int {
	if ev == nil {
		return 0
	}

	if e.Policy != m.PolicyPerMessage {
		return len(ev.Unclassified)
	}

	distinct := make(map[string]struct{}, len(ev.Unclassified))
	for _, rec := range ev.Unclassified {
		distinct[rec.Message] = struct{}{}
	}

	return len(distinct)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}

	return float64(num) / float64(den)
}

// EvidenceFromFindings groups direct detector findings into per-file
// evidence. Every scanned path gets an entry, so a clean scan counts as
// evidence of no defects.
func EvidenceFromFindings(scanned []m.Path, findings []m.Finding) map[m.Path]*m.Evidence {
	out := make(map[m.Path]*m.Evidence, len(scanned))

	for _, p := range scanned {
		p = NormalizePath(p)
		out[p] = &m.Evidence{Path: p}
	}

	for _, f := range findings {
		p := NormalizePath(f.SourcePath)

		ev, ok := out[p]
		if !ok {
			ev = &m.Evidence{Path: p}
			out[p] = ev
		}

		ev.Findings = append(ev.Findings, f)
	}

	return out
}
