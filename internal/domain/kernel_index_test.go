package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"securehls.dev/pkg/securehls/internal/adapter"
)

func indexOf(t *testing.T, src string) *kernelIndex {
	t.Helper()

	toks, err := adapter.NewLocalCSourceAdapter().Tokenize(context.Background(), "k.c", []byte(src))
	require.NoError(t, err)

	return buildKernelIndex([]byte(src), toks)
}

func TestKernelIndex_DeclaredArrayBound(t *testing.T) {
	k := indexOf(t, `#define TAPS 8
#define SQ(x) ((x) * (x))
float coeff[TAPS];
void k(int n) {
    int buf[16];
    float *rows[4];
    int acc = coeff[2] * buf[n];
}
`)

	n, ok := k.DeclaredArrayBound("coeff")
	require.True(t, ok)
	assert.Equal(t, 8, n)

	n, ok = k.DeclaredArrayBound("buf")
	require.True(t, ok)
	assert.Equal(t, 16, n)

	n, ok = k.DeclaredArrayBound("rows")
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = k.DeclaredArrayBound("acc")
	assert.False(t, ok)

	_, ok = k.defines["SQ"]
	assert.False(t, ok)
}

func TestKernelIndex_LoopBoundExpr(t *testing.T) {
	k := indexOf(t, `void k(int *a, int n, int m) {
    for (int i = 0; i <= n; ++i) { a[i] = 0; }
    for (int j = 0; m - 1 > j && a[j]; j++) a[j] = 1;
}
`)

	i, ok := k.LoopBoundExpr("i")
	require.True(t, ok)
	assert.True(t, i.Inclusive())
	assert.Equal(t, "n", i.Bound)
	assert.Equal(t, 2, i.Line)

	j, ok := k.LoopBoundExpr("j")
	require.True(t, ok)
	assert.False(t, j.Inclusive())
	assert.Equal(t, "m - 1", j.Bound)

	_, ok = k.LoopBoundExpr("n")
	assert.False(t, ok)
}

func TestKernelIndex_Functions(t *testing.T) {
	k := indexOf(t, `int helper(int);
static int helper(int x) { if (x) { return 1; } return 0; }
void top(int *a) { a[0] = helper(1); }
`)

	assert.Equal(t, []string{"helper", "top"}, k.Functions())
}

func TestKernelIndex_AccessesAndDefs(t *testing.T) {
	k := indexOf(t, `void k(float *x, float *y, int n) {
    float *p = x + n;
    int i = 0;
    y[i] = x[i] * 2;
    *p = 1;
    y[i]++;
    float v = *y;
}
`)

	require.Len(t, k.accesses, 5)

	assert.Equal(t, "y", k.accesses[0].Array)
	assert.True(t, k.accesses[0].Write)
	assert.Equal(t, "x", k.accesses[1].Array)
	assert.False(t, k.accesses[1].Write)

	assert.True(t, k.accesses[2].Deref)
	assert.True(t, k.accesses[2].Write)
	assert.Equal(t, "p", k.accesses[2].Array)

	assert.True(t, k.accesses[3].Write)

	assert.True(t, k.accesses[4].Deref)
	assert.False(t, k.accesses[4].Write)

	require.Len(t, k.defs, 3)
	assert.True(t, k.defs[0].Pointer)
	assert.Equal(t, "x + n", k.defs[0].Text)
	assert.False(t, k.defs[1].Pointer)
}

func TestKernelIndex_MultiplicationIsNotDeclaration(t *testing.T) {
	k := indexOf(t, `void k(float *x, float w, int i) {
    float acc = w * x[i];
}
`)

	require.Len(t, k.accesses, 1)
	assert.Equal(t, "x", k.accesses[0].Array)

	_, ok := k.DeclaredArrayBound("x")
	assert.False(t, ok)
}

func TestKernelIndex_Anchor(t *testing.T) {
	src := `void k(int *a, int n) {
    for (int i = 0; i < n; i++)
        a[i] = i;
    if (a[0] > 1) { a[1] = 0; }
}
`
	k := indexOf(t, src)

	require.Len(t, k.accesses, 3)

	anchor, ok := k.anchorAt(k.accesses[0].tok)
	require.True(t, ok)
	assert.Equal(t, "a[i] = i;", anchor)

	_, ok = k.anchorAt(k.accesses[1].tok)
	assert.False(t, ok, "access inside an if header has no statement anchor")

	anchor, ok = k.anchorAt(k.accesses[2].tok)
	require.True(t, ok)
	assert.Equal(t, "a[1] = 0;", anchor)
}

func TestKernelIndex_DependsOnAndGuards(t *testing.T) {
	k := indexOf(t, `void k(int *a, int n) {
    for (int i = 0; i <= n; i++) {
        int j = i + 1;
        int c = (j < n) ? j : n - 1;
        a[j] = 0;
        a[c] = 0;
        if (j < n) { a[j] = 1; }
    }
}
`)

	require.Len(t, k.accesses, 3)

	assert.True(t, k.dependsOn(k.accesses[0].index, "i", k.accesses[0].tok))
	assert.False(t, k.dependsOn(k.accesses[1].index, "i", k.accesses[1].tok), "clamped definitions break the chain")

	assert.False(t, k.guardedBy(k.accesses[0].tok, "j"))
	assert.True(t, k.guardedBy(k.accesses[2].tok, "j"))
}

func TestKernelIndex_LoopsAndAccesses(t *testing.T) {
	var k KernelIndex = indexOf(t, `void k(int *a, int *b, int n) {
    for (int i = 0; i < n; i++) {
        b[i] = a[i + 1];
    }
    for (int j = 0; 4 >= j; j++) {
        b[j] += 1;
    }
}
`)

	loops := k.Loops()
	require.Len(t, loops, 2)
	assert.Equal(t, "i", loops[0].Var)
	assert.Equal(t, "n", loops[0].Bound)
	assert.False(t, loops[0].Inclusive())
	assert.Equal(t, 2, loops[0].Line)
	assert.Equal(t, "j", loops[1].Var)
	assert.Equal(t, "4", loops[1].Bound)
	assert.True(t, loops[1].Inclusive())

	accesses := k.Accesses()
	require.Len(t, accesses, 3)

	assert.Equal(t, "b", accesses[0].Array)
	assert.Equal(t, "i", accesses[0].IndexText)
	assert.True(t, accesses[0].Write)

	assert.Equal(t, "a", accesses[1].Array)
	assert.Equal(t, "i + 1", accesses[1].IndexText)
	assert.False(t, accesses[1].Write)
	assert.Equal(t, 3, accesses[1].Line)

	assert.Equal(t, "b", accesses[2].Array)
	assert.True(t, accesses[2].Write)

	for _, acc := range accesses {
		assert.False(t, acc.Deref)
	}
}
