package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "securehls.dev/pkg/securehls/internal/model"
)

func mustStore(t *testing.T, descriptor string) *GroundTruthStore {
	t.Helper()

	store, err := ParseGroundTruth("inline.json", []byte(descriptor), nil)
	require.NoError(t, err)

	return store
}

func finding(p m.Path, t m.BugType) m.Finding {
	return m.Finding{SourcePath: p, Line: 1, BugType: t, Message: string(t)}
}

func TestScoringEngine_SafeFileChargesOnePerDistinctType(t *testing.T) {
	store := mustStore(t, `{"benchmarks": [{"id": "s", "file": "safe.c"}]}`)

	evidence := map[m.Path]*m.Evidence{
		"safe.c": {
			Path: "safe.c",
			Findings: []m.Finding{
				finding("safe.c", m.BugOOBRead),
				finding("safe.c", m.BugOOBRead),
				finding("safe.c", m.BugOOBRead),
				finding("safe.c", m.BugNullDeref),
			},
		},
	}

	res := NewScoringEngine("").Evaluate("clang", store, evidence)
	assert.Equal(t, 0, res.TP)
	assert.Equal(t, 2, res.FP)
	assert.Equal(t, 0, res.FN)
}

func TestScoringEngine_DuplicatesYieldOneTP(t *testing.T) {
	store := mustStore(t, `{"benchmarks": [{"id": "k", "file": "k.c", "bugs": [{"bug_type": "OOB_WRITE"}, {"bug_type": "OOB_WRITE"}]}]}`)

	evidence := map[m.Path]*m.Evidence{
		"./k.c": {
			Path:     "k.c",
			Findings: []m.Finding{finding("k.c", m.BugOOBWrite), finding("k.c", m.BugOOBWrite)},
		},
	}

	res := NewScoringEngine(m.PolicyPerLine).Evaluate("cppcheck", store, evidence)
	assert.Equal(t, 1, res.TP)
	assert.Equal(t, 0, res.FP)
	assert.Equal(t, 0, res.FN)
	assert.InDelta(t, 1.0, res.Precision, 1e-9)
	assert.InDelta(t, 1.0, res.Recall, 1e-9)
}

func TestScoringEngine_UnclassifiedPolicy(t *testing.T) {
	store := mustStore(t, `{"benchmarks": [{"id": "k", "file": "k.c", "bugs": [{"bug_type": "OOB_READ"}]}]}`)

	unclassified := []m.DiagnosticRecord{
		{Line: 3, Message: "unused variable 'acc'"},
		{Line: 9, Message: "unused variable 'acc'"},
		{Line: 12, Message: "implicit conversion"},
	}

	evidence := map[m.Path]*m.Evidence{
		"k.c": {Path: "k.c", Findings: []m.Finding{finding("k.c", m.BugOOBRead)}, Unclassified: unclassified},
	}

	perLine := NewScoringEngine(m.PolicyPerLine).Evaluate("clang", store, evidence)
	assert.Equal(t, 3, perLine.FP)
	assert.Equal(t, 3, perLine.Files[0].Unclassified)

	perMessage := NewScoringEngine(m.PolicyPerMessage).Evaluate("clang", store, evidence)
	assert.Equal(t, 2, perMessage.FP)
}

func TestScoringEngine_EvidenceOutsideCorpus(t *testing.T) {
	store := mustStore(t, `{"benchmarks": [{"id": "k", "file": "k.c", "bugs": [{"bug_type": "OOB_READ"}]}]}`)

	evidence := map[m.Path]*m.Evidence{
		"extra.c": {
			Path:         "extra.c",
			Findings:     []m.Finding{finding("extra.c", m.BugNullDeref)},
			Unclassified: []m.DiagnosticRecord{{Message: "noise"}},
		},
	}

	res := NewScoringEngine("").Evaluate("clang", store, evidence)
	assert.Equal(t, 0, res.TP)
	assert.Equal(t, 2, res.FP)
	assert.Equal(t, 1, res.FN)

	require.Len(t, res.Files, 2)
	assert.Equal(t, m.Path("k.c"), res.Files[0].Path)
	assert.True(t, res.Files[0].NoEvidence)
	assert.Equal(t, m.Path("extra.c"), res.Files[1].Path)
}

func TestScoringEngine_ZeroDenominators(t *testing.T) {
	store := mustStore(t, `{"benchmarks": [{"id": "s", "file": "safe.c"}]}`)

	res := NewScoringEngine("").Evaluate("clang", store, nil)
	assert.Equal(t, m.ScoreResult{
		Tool:  "clang",
		Files: []m.FileScore{{Path: "safe.c", Expected: []m.BugType{}, Detected: []m.BugType{}, NoEvidence: true}},
	}, res)
}

func TestEvidenceFromFindings(t *testing.T) {
	evidence := EvidenceFromFindings(
		[]m.Path{"a.c", "./b.c"},
		[]m.Finding{finding("a.c", m.BugOOBRead), finding("c.c", m.BugOOBWrite)},
	)

	require.Len(t, evidence, 3)
	assert.Len(t, evidence["a.c"].Findings, 1)
	assert.Empty(t, evidence["b.c"].Findings)
	assert.Equal(t, m.NewBugTypeSet(m.BugOOBWrite), evidence["c.c"].BugTypes())
}
