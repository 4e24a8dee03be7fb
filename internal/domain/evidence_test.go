package domain_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	adaptermocks "securehls.dev/pkg/securehls/internal/adapter/mocks"
	"securehls.dev/pkg/securehls/internal/domain"
	m "securehls.dev/pkg/securehls/internal/model"
)

func newClangDetector(t *testing.T) *domain.LogDetector {
	t.Helper()

	detector, err := domain.NewLogDetector("clang", "", domain.NewBugClassifier(domain.DefaultClassifierRules))
	require.NoError(t, err)

	return detector
}

func TestLogName(t *testing.T) {
	tests := []struct {
		path m.Path
		want string
	}{
		{path: "bench/fir/fir_buggy_oob_read.c", want: "bench_fir_fir_buggy_oob_read.c.log"},
		{path: "./k.c", want: "k.c.log"},
		{path: `bench\gemm\gemm_safe.c`, want: "bench_gemm_gemm_safe.c.log"},
	}

	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.LogName(tt.path))
		})
	}
}

func TestEvidenceSource_Load(t *testing.T) {
	ctx := context.Background()
	mockFS := new(adaptermocks.MockSourceFSAdapter)
	source := domain.NewEvidenceSource(mockFS, "logs", 50*time.Millisecond, 2)
	detector := newClangDetector(t)

	logOf := func(p string) m.Path {
		return m.Path(filepath.Join("logs", "clang", domain.LogName(m.Path(p))))
	}

	mockFS.EXPECT().ReadFile(mock.Anything, logOf("a.c")).
		Return([]byte("a.c:3:9: warning: array index out of bounds\na.c:7:1: warning: unused label 'x'\n"), nil).Once()
	mockFS.EXPECT().ReadFile(mock.Anything, logOf("missing.c")).
		Return(nil, &fs.PathError{Op: "open", Path: "missing", Err: fs.ErrNotExist}).Once()
	mockFS.EXPECT().ReadFile(mock.Anything, logOf("garbage.c")).
		Return([]byte("analysis finished\n"), nil).Once()
	mockFS.EXPECT().ReadFile(mock.Anything, logOf("denied.c")).
		Return(nil, fs.ErrPermission).Once()
	mockFS.EXPECT().ReadFile(mock.Anything, logOf("slow.c")).
		RunAndReturn(func(ctx context.Context, _ m.Path) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()

	evidence, err := source.Load(ctx, detector, []m.Path{"a.c", "missing.c", "garbage.c", "denied.c", "slow.c"})
	require.NoError(t, err)

	require.Len(t, evidence, 2)

	a := evidence["a.c"]
	require.NotNil(t, a)
	require.Len(t, a.Findings, 1)
	assert.Equal(t, m.BugOOBRead, a.Findings[0].BugType)
	assert.Equal(t, 3, a.Findings[0].Line)
	require.Len(t, a.Unclassified, 1)
	assert.Equal(t, 7, a.Unclassified[0].Line)

	garbage := evidence["garbage.c"]
	require.NotNil(t, garbage, "an unparsable log still counts as evidence")
	assert.Empty(t, garbage.Findings)
	assert.Empty(t, garbage.Unclassified)

	assert.NotContains(t, evidence, m.Path("missing.c"))
	assert.NotContains(t, evidence, m.Path("denied.c"))
	assert.NotContains(t, evidence, m.Path("slow.c"))

	mockFS.AssertExpectations(t)
}

func TestEvidenceSource_LoadCancelled(t *testing.T) {
	mockFS := new(adaptermocks.MockSourceFSAdapter)
	source := domain.NewEvidenceSource(mockFS, "logs", 0, 1)

	ctx, cancel := context.WithCancel(context.Background())

	mockFS.EXPECT().ReadFile(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, m.Path) ([]byte, error) {
			cancel()
			return nil, context.Canceled
		}).Once()

	_, err := source.Load(ctx, newClangDetector(t), []m.Path{"a.c"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLogDetector_Analyze(t *testing.T) {
	detector, err := domain.NewLogDetector("scan-build", "scanbuild", domain.NewBugClassifier(domain.DefaultClassifierRules))
	require.NoError(t, err)

	findings, err := detector.Analyze(context.Background(), "k.c", []byte("k.c:4:12: warning: Dereference of null pointer (loaded from variable 'p')\n"))
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Equal(t, m.Finding{
		SourcePath: "k.c",
		Line:       4,
		BugType:    m.BugNullDeref,
		Message:    "Dereference of null pointer (loaded from variable 'p')",
	}, findings[0])
}

func TestNewLogDetector_UnknownParser(t *testing.T) {
	_, err := domain.NewLogDetector("pvs", "", domain.NewBugClassifier(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pvs")
}
