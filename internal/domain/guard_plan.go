package domain

import (
	"context"

	m "securehls.dev/pkg/securehls/internal/model"
)

// GuardPlanner decides which guards protect a kernel. Guards pinned in the
// ground truth win over detector sites of the same bug type.
type GuardPlanner struct {
	detector *DirectDetector
	store    *GroundTruthStore
}

// NewGuardPlanner creates a GuardPlanner. store may be nil.
func NewGuardPlanner(detector *DirectDetector, store *GroundTruthStore) *GuardPlanner {
	return &GuardPlanner{detector: detector, store: store}
}

// Plan returns the guards for path, pinned guards first.
func (p *GuardPlanner) Plan(ctx context.Context, path m.Path, src []byte) ([]m.Guard, error) {
	pinned := p.pinned(path)

	planned, err := p.detector.Plan(ctx, path, src)
	if err != nil {
		return nil, err
	}

	covered := m.NewBugTypeSet()
	for _, g := range pinned {
		covered.Add(g.BugType)
	}

	guards := pinned

	for _, g := range planned {
		if !covered.Has(g.BugType) {
			guards = append(guards, g)
		}
	}

	return guards, nil
}

func (p *GuardPlanner) pinned(path m.Path) []m.Guard {
	if p.store == nil {
		return nil
	}

	b, ok := p.store.Benchmark(path)
	if !ok {
		return nil
	}

	var guards []m.Guard

	for _, bug := range b.Bugs {
		if bug.Anchor == "" || bug.Predicate == "" {
			continue
		}

		guards = append(guards, m.Guard{Anchor: bug.Anchor, Predicate: bug.Predicate, BugType: bug.BugType})
	}

	return guards
}
