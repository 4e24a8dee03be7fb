package model

import "sort"

// BugType is a canonical memory-safety defect kind.
type BugType string

const (
	// BugOOBRead is an out-of-bounds array read.
	BugOOBRead BugType = "OOB_READ"
	// BugOOBWrite is an out-of-bounds array write.
	BugOOBWrite BugType = "OOB_WRITE"
	// BugNullDeref is a null pointer dereference.
	BugNullDeref BugType = "NULL_DEREF"

	// Unrelated marks a diagnostic that maps to no known defect kind.
	// It is a classification outcome, never a ground-truth bug type.
	Unrelated BugType = "UNRELATED"
)

// DefaultBugTypes lists the built-in defect kinds in declaration order.
var DefaultBugTypes = []BugType{BugOOBRead, BugOOBWrite, BugNullDeref}

// BugTypeSet is a set of bug types. Duplicates collapse by construction.
type BugTypeSet map[BugType]struct{}

// NewBugTypeSet builds a set from the given types.
func NewBugTypeSet(types ...BugType) BugTypeSet {
	set := make(BugTypeSet, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}

	return set
}

// Add inserts a bug type into the set.
func (s BugTypeSet) Add(t BugType) {
	s[t] = struct{}{}
}

// Has reports whether t is in the set. A nil set contains nothing.
func (s BugTypeSet) Has(t BugType) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the members in lexical order.
func (s BugTypeSet) Sorted() []BugType {
	out := make([]BugType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// BugAnnotation is one curated defect of a benchmark.
type BugAnnotation struct {
	BugType  BugType `json:"bug_type" yaml:"bug_type"`
	Location string  `json:"location,omitempty" yaml:"location,omitempty"`
	Line     int     `json:"line,omitempty" yaml:"line,omitempty"`

	// Anchor and Predicate pin a known guard site for the instrumenter.
	Anchor    string `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Predicate string `json:"predicate,omitempty" yaml:"predicate,omitempty"`
}

// Benchmark is one kernel of the ground-truth corpus. A benchmark without
// bugs is safe.
type Benchmark struct {
	ID       string          `json:"id" yaml:"id"`
	File     Path            `json:"file" yaml:"file"`
	Function string          `json:"function,omitempty" yaml:"function,omitempty"`
	Bugs     []BugAnnotation `json:"bugs,omitempty" yaml:"bugs,omitempty"`
}

// Safe reports whether the benchmark carries no known defect.
func (b Benchmark) Safe() bool {
	return len(b.Bugs) == 0
}

// BugTypes returns the benchmark's bug-type set.
func (b Benchmark) BugTypes() BugTypeSet {
	set := make(BugTypeSet, len(b.Bugs))
	for _, bug := range b.Bugs {
		set.Add(bug.BugType)
	}

	return set
}
