package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "securehls.dev/pkg/securehls/internal/model"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func shortPaths(files []m.File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, filepath.Base(string(f.ShortPath)))
	}

	return out
}

func TestLocalSourceFSAdapter_Discover(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	writeTestFile(t, filepath.Join(root, "fir.c"), "void fir(void) {}\n")
	writeTestFile(t, filepath.Join(root, "fir_tb.c"), "int main(void) {}\n")
	writeTestFile(t, filepath.Join(root, "notes.txt"), "ignore me\n")
	writeTestFile(t, filepath.Join(root, "nested", "gemm.c"), "void gemm(void) {}\n")
	writeTestFile(t, filepath.Join(root, ".hidden", "skip.c"), "void skip(void) {}\n")

	adapter := NewLocalSourceFSAdapter()

	t.Run("non recursive skips nested files", func(t *testing.T) {
		files, err := adapter.Discover(ctx, []m.Path{m.Path(root)})
		require.NoError(t, err)
		assert.Equal(t, []string{"fir.c", "fir_tb.c"}, shortPaths(files))
	})

	t.Run("recursive visits nested files", func(t *testing.T) {
		files, err := adapter.Discover(ctx, []m.Path{m.Path(root + "/...")}, `_tb\.c$`)
		require.NoError(t, err)
		assert.Equal(t, []string{"fir.c", "gemm.c"}, shortPaths(files))
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		files, err := adapter.Discover(ctx, []m.Path{m.Path(root), m.Path(root + "/...")}, `_tb\.c$`)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("invalid exclude pattern", func(t *testing.T) {
		_, err := adapter.Discover(ctx, []m.Path{m.Path(root)}, "([")
		require.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := adapter.Discover(ctx, []m.Path{m.Path(filepath.Join(root, "absent"))})
		require.Error(t, err)
	})
}

func TestLocalSourceFSAdapter_ReadAndHash(t *testing.T) {
	ctx := context.Background()
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "k.c")
	writeTestFile(t, path, "int k;\n")

	content, err := adapter.ReadFile(ctx, m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, "int k;\n", string(content))

	hash, err := adapter.HashFile(ctx, m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256([]byte("int k;\n"))), hash)

	_, err = adapter.HashFile(ctx, m.Path(path+".missing"))
	require.Error(t, err)
}

func TestLocalSourceFSAdapter_WriteFile(t *testing.T) {
	ctx := context.Background()
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "out", "k_secure.c")

	require.NoError(t, adapter.WriteFile(ctx, m.Path(path), []byte("guarded"), 0o644))

	info, err := adapter.FileInfo(ctx, m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, int64(len("guarded")), info.Size())
}

func TestLocalSourceFSAdapter_Paths(t *testing.T) {
	ctx := context.Background()
	adapter := NewLocalSourceFSAdapter()

	rel, err := adapter.RelPath(ctx, "/corpus", "/corpus/bench/fir/fir.c")
	require.NoError(t, err)
	assert.Equal(t, m.Path("bench/fir/fir.c"), rel)

	assert.Equal(t, m.Path(filepath.Join("a", "b", "c.c")), adapter.JoinPath(ctx, "a", "b", "c.c"))
}
