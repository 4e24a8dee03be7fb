package domain

import (
	"context"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
	m "securehls.dev/pkg/securehls/internal/model"
)

// Issue is one problem found while loading a ground-truth descriptor.
type Issue struct {
	Field   string
	Message string
}

// LoadError reports a ground-truth descriptor that cannot be used.
type LoadError struct {
	Path   string
	Issues []Issue
	Err    error
}

// Error renders the load error, one issue per line.
func (e *LoadError) Error() string {
	if e == nil {
		return "ground truth load failed"
	}

	if e.Err != nil {
		return fmt.Sprintf("load ground truth %s: %v", e.Path, e.Err)
	}

	lines := make([]string, 0, len(e.Issues)+1)
	lines = append(lines, fmt.Sprintf("invalid ground truth %s:", e.Path))

	for _, issue := range e.Issues {
		lines = append(lines, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}

	return strings.Join(lines, "\n")
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type groundTruthDescriptor struct {
	Benchmarks []m.Benchmark `yaml:"benchmarks"`
}

// GroundTruthStore is the immutable benchmark corpus, keyed by source path.
type GroundTruthStore struct {
	benchmarks []m.Benchmark
	byPath     map[m.Path]int
}

// LoadGroundTruth reads and validates a descriptor. JSON and YAML are both
// accepted. knownTypes restricts the accepted bug types; empty accepts
// m.DefaultBugTypes.
func LoadGroundTruth(ctx context.Context, file string, knownTypes []m.BugType) (*GroundTruthStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &LoadError{Path: file, Err: err}
	}

	return ParseGroundTruth(file, data, knownTypes)
}

// ParseGroundTruth validates an in-memory descriptor. name is used in errors.
func ParseGroundTruth(name string, data []byte, knownTypes []m.BugType) (*GroundTruthStore, error) {
	var desc groundTruthDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("malformed descriptor: %w", err)}
	}

	if len(knownTypes) == 0 {
		knownTypes = m.DefaultBugTypes
	}

	known := m.NewBugTypeSet(knownTypes...)

	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if len(desc.Benchmarks) == 0 {
		add("benchmarks", "at least one benchmark is required")
	}

	store := &GroundTruthStore{
		benchmarks: make([]m.Benchmark, 0, len(desc.Benchmarks)),
		byPath:     make(map[m.Path]int, len(desc.Benchmarks)),
	}

	ids := map[string]struct{}{}

	for i, b := range desc.Benchmarks {
		prefix := fmt.Sprintf("benchmarks[%d]", i)

		b.ID = strings.TrimSpace(b.ID)
		if b.ID == "" {
			add(prefix+".id", "is required")
		} else if _, dup := ids[b.ID]; dup {
			add(prefix+".id", fmt.Sprintf("duplicate id %q", b.ID))
		} else {
			ids[b.ID] = struct{}{}
		}

		if strings.TrimSpace(string(b.File)) == "" {
			b.File = ""
			add(prefix+".file", "is required")
		} else {
			b.File = NormalizePath(b.File)
			if _, dup := store.byPath[b.File]; dup {
				add(prefix+".file", fmt.Sprintf("duplicate file %q", b.File))
			}
		}

		for j, bug := range b.Bugs {
			field := fmt.Sprintf("%s.bugs[%d].bug_type", prefix, j)

			switch {
			case bug.BugType == "":
				add(field, "is required")
			case bug.BugType == m.Unrelated || !known.Has(bug.BugType):
				add(field, fmt.Sprintf("unknown bug type %q", bug.BugType))
			}
		}

		if _, dup := store.byPath[b.File]; !dup && b.File != "" {
			store.byPath[b.File] = len(store.benchmarks)
		}

		store.benchmarks = append(store.benchmarks, b)
	}

	if len(issues) > 0 {
		return nil, &LoadError{Path: name, Issues: issues}
	}

	return store, nil
}

// NormalizePath turns a corpus path into its canonical slash form.
func NormalizePath(p m.Path) m.Path {
	s := strings.ReplaceAll(strings.TrimSpace(string(p)), "\\", "/")
	return m.Path(strings.TrimPrefix(path.Clean(s), "./"))
}

// Benchmarks returns copies of the benchmarks in declaration order.
func (s *GroundTruthStore) Benchmarks() []m.Benchmark {
	out := make([]m.Benchmark, len(s.benchmarks))
	for i, b := range s.benchmarks {
		out[i] = cloneBenchmark(b)
	}

	return out
}

// Benchmark looks up the benchmark for a source path.
func (s *GroundTruthStore) Benchmark(p m.Path) (m.Benchmark, bool) {
	i, ok := s.byPath[NormalizePath(p)]
	if !ok {
		return m.Benchmark{}, false
	}

	return cloneBenchmark(s.benchmarks[i]), true
}

func cloneBenchmark(b m.Benchmark) m.Benchmark {
	b.Bugs = slices.Clone(b.Bugs)
	return b
}

// BugTypesOf returns the ground-truth bug-type set of a file. Safe and
// unknown files both yield an empty set.
func (s *GroundTruthStore) BugTypesOf(p m.Path) m.BugTypeSet {
	b, ok := s.Benchmark(p)
	if !ok {
		return m.BugTypeSet{}
	}

	return b.BugTypes()
}

// Len returns the number of benchmarks.
func (s *GroundTruthStore) Len() int {
	return len(s.benchmarks)
}
