package testutil

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateFileTree creates tree under basePath on the real filesystem
func CreateFileTree(t *testing.T, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
			require.NoError(t, os.WriteFile(fullPath, []byte(v), 0644), "write %s", fullPath)
		case FileTree:
			require.NoError(t, os.MkdirAll(fullPath, 0755), "mkdir %s", fullPath)
			CreateFileTree(t, fullPath, v)
		case Symlink:
			require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
			require.NoError(t, os.Symlink(v.Target, fullPath), "symlink %s", fullPath)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// Package returns a FileTree for a dependency directory holding a
// package.json built from fields and an empty file at every extra path.
func Package(t *testing.T, fields map[string]interface{}, files ...string) FileTree {
	t.Helper()

	data, err := json.Marshal(fields)
	require.NoError(t, err)

	tree := FileTree{"package.json": string(data)}
	for _, f := range files {
		tree[f] = ""
	}
	return tree
}

// Project creates a temporary project directory from tree and returns
// its path
func Project(t *testing.T, tree FileTree) string {
	t.Helper()

	root := t.TempDir()
	// Resolve /tmp style symlinks so link targets compare cleanly.
	root, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	CreateFileTree(t, root, tree)
	return root
}

// Symlinks returns every symlink directly in dir, and one level down in
// @scope directories, keyed by slash-separated name with its target as value
func Symlinks(t *testing.T, dir string) map[string]string {
	t.Helper()

	links := make(map[string]string)
	collectSymlinks(t, dir, "", links)
	return links
}

func collectSymlinks(t *testing.T, dir, prefix string, links map[string]string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		info, err := os.Lstat(full)
		require.NoError(t, err)

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(full)
			require.NoError(t, err)
			links[prefix+entry.Name()] = target
		case info.IsDir() && prefix == "" && entry.Name()[0] == '@':
			collectSymlinks(t, full, entry.Name()+"/", links)
		}
	}
}

// AssertSymlink checks that path is a symlink pointing at target
func AssertSymlink(t *testing.T, path, target string) {
	t.Helper()

	info, err := os.Lstat(path)
	require.NoError(t, err, "expected symlink at %s", path)
	require.True(t, info.Mode()&fs.ModeSymlink != 0, "%s is not a symlink", path)

	got, err := os.Readlink(path)
	require.NoError(t, err)
	require.Equal(t, target, got, "symlink %s points elsewhere", path)
}

// AssertNotExists checks that nothing, not even a dangling link, is at path
func AssertNotExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Lstat(path)
	require.True(t, os.IsNotExist(err), "expected nothing at %s, got err=%v", path, err)
}
