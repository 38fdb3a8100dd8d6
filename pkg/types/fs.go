package types

import (
	"io/fs"
)

// FS is the filesystem interface required by the linker
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Lstat must not follow symlinks; stale link detection depends on it.
	Lstat(name string) (fs.FileInfo, error)

	Remove(name string) error
}
