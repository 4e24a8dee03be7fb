// Package adapter contains infrastructure adapters for the SecureHLS CLI.
package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "securehls.dev/pkg/securehls/internal/model"
	"securehls.dev/pkg/securehls/pkg"
)

// KernelExt is the file extension of kernel sources.
const KernelExt = ".c"

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning a corpus. It hides direct `os` access so the
// workflow logic can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Discover resolves path patterns into kernel files. A trailing "/..."
	// scans recursively; a directory scans only its own entries.
	Discover(ctx context.Context, roots []m.Path, exclude ...string) ([]m.File, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// HashFile returns a stable fingerprint (SHA-256) for the file at path.
	HashFile(ctx context.Context, path m.Path) (string, error)

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// WriteFile atomically replaces path with content.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Discover walks the given roots and returns kernel files sorted by path.
func (a *LocalSourceFSAdapter) Discover(ctx context.Context, roots []m.Path, exclude ...string) ([]m.File, error) {
	patterns, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	if len(roots) == 0 {
		roots = []m.Path{"./..."}
	}

	seen := map[string]struct{}{}

	var files []m.File

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rootStr, recursive := splitPattern(string(root))

		err := a.walk(rootStr, recursive, func(path string, info os.FileInfo) error {
			if info.IsDir() || filepath.Ext(path) != KernelExt || excluded(path, patterns) {
				return nil
			}

			if _, ok := seen[path]; ok {
				return nil
			}

			seen[path] = struct{}{}

			files = append(files, m.File{
				FullPath:  m.Path(path),
				ShortPath: m.Path(filepath.ToSlash(filepath.Clean(path))),
			})

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", root, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ShortPath < files[j].ShortPath })

	return files, nil
}

func splitPattern(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}

	if strings.HasSuffix(pattern, "/...") {
		root := strings.TrimSuffix(pattern, "/...")
		if root == "" {
			root = "."
		}

		return root, true
	}

	return pattern, false
}

func compileExcludes(exclude []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exclude))

	for _, expr := range exclude {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", expr, err)
		}

		patterns = append(patterns, re)
	}

	return patterns, nil
}

func excluded(path string, patterns []*regexp.Regexp) bool {
	slashed := filepath.ToSlash(path)
	for _, re := range patterns {
		if re.MatchString(slashed) {
			return true
		}
	}

	return false
}

func (a *LocalSourceFSAdapter) walk(root string, recursive bool, fn func(path string, info os.FileInfo) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && path != root {
			if !recursive || strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
		}

		return fn(path, info)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(ctx context.Context, path m.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// WriteFile writes content through a temporary file and a rename.
func (a *LocalSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return pkg.WriteFileAtomic(string(path), content, perm)
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(_ context.Context, base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(filepath.ToSlash(rel)), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
