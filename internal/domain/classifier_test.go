package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	m "securehls.dev/pkg/securehls/internal/model"
)

func TestBugClassifier_Classify(t *testing.T) {
	c := NewBugClassifier(nil)

	tests := []struct {
		name    string
		message string
		want    m.BugType
	}{
		{"clang array bounds", "fir.c:19:5: warning: array index 4 is past the end of the array; out of bounds access", m.BugOOBRead},
		{"hyphenated", "Out-Of-Bounds read detected", m.BugOOBRead},
		{"buffer overflow only matches write", "gemm.c:27: error: buffer overflow on C", m.BugOOBWrite},
		{"buffer overrun", "arrayIndexOutOfBounds::k.c::3::Buffer overrun possible", m.BugOOBRead},
		{"null pointer", "warning: Dereference of null pointer (loaded from variable 'local')", m.BugNullDeref},
		{"upper case null dereference", "NULL dereference of 'p'", m.BugNullDeref},
		{"unrelated", "warning: unused variable 'acc'", m.Unrelated},
		{"empty", "", m.Unrelated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.message))
		})
	}
}

func TestBugClassifier_DeclarationOrderBreaksTies(t *testing.T) {
	// "out of bounds" appears in both OOB rules; the first declared wins.
	c := NewBugClassifier(nil)
	assert.Equal(t, m.BugOOBRead, c.Classify("index out of bounds"))

	swapped := NewBugClassifier([]ClassifierRule{DefaultClassifierRules[1], DefaultClassifierRules[0]})
	assert.Equal(t, m.BugOOBWrite, swapped.Classify("index out of bounds"))
}

func TestBugClassifier_CustomTable(t *testing.T) {
	c := NewBugClassifier([]ClassifierRule{
		{BugType: "USE_AFTER_FREE", Keywords: []string{"  Use After Free ", ""}},
		{BugType: m.BugNullDeref, Keywords: []string{"nullptr"}},
		{BugType: "USE_AFTER_FREE", Keywords: []string{"freed memory"}},
	})

	assert.Equal(t, m.BugType("USE_AFTER_FREE"), c.Classify("heap use after free in kernel"))
	assert.Equal(t, m.BugType("USE_AFTER_FREE"), c.Classify("read of freed memory"))
	assert.Equal(t, m.Unrelated, c.Classify("out of bounds"))
	assert.Equal(t, []m.BugType{"USE_AFTER_FREE", m.BugNullDeref}, c.BugTypes())
}

func TestBugClassifier_DefaultBugTypes(t *testing.T) {
	assert.Equal(t, m.DefaultBugTypes, NewBugClassifier(nil).BugTypes())
}
