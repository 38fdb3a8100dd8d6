package testutil

// FileTree represents a nested file structure for declarative test setup.
// String values are file contents, FileTree values are directories and
// Symlink values are symbolic links.
type FileTree map[string]interface{}

// Symlink is a FileTree entry creating a symbolic link to Target
type Symlink struct {
	Target string
}
