// Package linker keeps a modules directory in sync with the browser
// entry points declared by the packages of a dependency directory.
//
// A sync removes every symlink from the modules directory, then walks
// the dependency directory (expanding @scope groups one level deep) and
// links each package whose package.json has a string "browser" field.
// The link is named after the package and points at the directory that
// contains the browser entry.
package linker

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jibs-autolinker/pkg/errors"
	"github.com/arthur-debert/jibs-autolinker/pkg/logging"
	"github.com/arthur-debert/jibs-autolinker/pkg/manifest"
	"github.com/arthur-debert/jibs-autolinker/pkg/types"
	"github.com/rs/zerolog"
)

// maxScopeDepth is how deep @scope groups are expanded. Nested scope
// names below the first level are treated as ordinary packages.
const maxScopeDepth = 1

// Linker creates and removes module links
type Linker struct {
	fs     types.FS
	config *types.Config
	logger zerolog.Logger
}

// New creates a Linker. A nil config behaves like an empty one.
func New(fsys types.FS, cfg *types.Config) *Linker {
	if cfg == nil {
		cfg = &types.Config{}
	}
	return &Linker{
		fs:     fsys,
		config: cfg,
		logger: logging.GetLogger("linker"),
	}
}

// visitFunc receives every qualifying link in walk order. Returning an
// error aborts the walk.
type visitFunc func(link types.Link) error

// Sync removes stale links from target and links every qualifying
// dependency found in source. On error the returned result describes
// the work done before the failure.
func (l *Linker) Sync(source, target string) (*types.Result, error) {
	done := logging.LogOperationStart(l.logger, "sync")
	defer done()

	result := newResult(source, target)

	removed, err := l.Clean(target)
	result.Removed = removed
	if err != nil {
		return result, err
	}

	err = l.linkInto(source, target, result)
	return result, err
}

// Link creates links for every qualifying dependency in source without
// cleaning target first. An existing file or link at a link path is a
// fatal error and stops the walk.
func (l *Linker) Link(source, target string) (*types.Result, error) {
	result := newResult(source, target)
	err := l.linkInto(source, target, result)
	return result, err
}

func (l *Linker) linkInto(source, target string, result *types.Result) error {
	entries, err := l.walk(source, target, "", 0, result, func(link types.Link) error {
		if parent, scoped := scopeDir(target, link); scoped && l.isSymlink(parent) {
			l.skipNested(result, link)
			return nil
		}
		if err := l.createLink(target, link); err != nil {
			return err
		}
		result.Linked = append(result.Linked, link)
		return nil
	})
	result.Entries = entries
	return err
}

// walk visits the entries of dir in the order the filesystem returns
// them and reports every linkable dependency to visit. It returns the
// names read from dir.
func (l *Linker) walk(dir, target, scope string, depth int, result *types.Result, visit visitFunc) ([]string, error) {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirRead, "failed to read dependency directory %s", dir).
			WithDetail("path", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		names = append(names, name)
		pkg := packagePath(scope, name)

		if reason, skip := l.filter(name); skip {
			l.skip(result, pkg, reason)
			continue
		}

		entryDir := filepath.Join(dir, name)

		if strings.HasPrefix(name, "@") && depth < maxScopeDepth {
			if _, err := l.walk(entryDir, target, name, depth+1, result, visit); err != nil {
				return names, err
			}
			continue
		}

		link, reason, ok := l.resolveLink(entryDir, target, name, pkg)
		if !ok {
			l.skip(result, pkg, reason)
			continue
		}

		if err := visit(link); err != nil {
			return names, err
		}
	}

	return names, nil
}

// filter applies the hidden-entry rule and the include/exclude lists,
// in that order.
func (l *Linker) filter(name string) (types.SkipReason, bool) {
	switch {
	case strings.HasPrefix(name, "."):
		return types.SkipHidden, true
	case !l.config.Includes(name):
		return types.SkipNotIncluded, true
	case l.config.Excludes(name):
		return types.SkipExcluded, true
	}
	return "", false
}

// resolveLink derives the link for a dependency directory from its
// manifest.
func (l *Linker) resolveLink(entryDir, target, name, pkg string) (types.Link, types.SkipReason, bool) {
	m, err := manifest.Load(l.fs, entryDir)
	if err != nil {
		l.logger.Trace().Err(err).Str("package", pkg).Msg("No usable manifest")
		return types.Link{}, types.SkipNoManifest, false
	}

	browserDir, ok := m.ResolveBrowserDir()
	if !ok {
		return types.Link{}, types.SkipNoBrowser, false
	}

	linkName, ok := m.PackageName()
	if !ok {
		linkName = name
	}
	if !validLinkName(linkName) {
		l.logger.Warn().Str("package", pkg).Str("name", linkName).Msg("Package name is not a valid link name")
		return types.Link{}, types.SkipInvalidName, false
	}

	return types.Link{
		Name:    linkName,
		Path:    filepath.Join(target, filepath.FromSlash(linkName)),
		Target:  browserDir,
		Package: pkg,
		Version: m.DisplayVersion(),
	}, "", true
}

// createLink materialises link. Scoped link names get their scope
// directory created first.
func (l *Linker) createLink(target string, link types.Link) error {
	if parent, scoped := scopeDir(target, link); scoped {
		if err := l.fs.MkdirAll(parent, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create scope directory %s", parent).
				WithDetail("path", parent)
		}
	}

	if err := l.fs.Symlink(link.Target, link.Path); err != nil {
		code := errors.ErrSymlinkCreate
		if stderrors.Is(err, fs.ErrExist) {
			code = errors.ErrSymlinkExists
		}
		return errors.Wrapf(err, code, "failed to link %s", link.Name).
			WithDetail("path", link.Path).
			WithDetail("target", link.Target).
			WithDetail("package", link.Package)
	}

	l.logger.Info().
		Str("name", link.Name).
		Str("target", link.Target).
		Msg("Linked module")
	return nil
}

func (l *Linker) skip(result *types.Result, pkg string, reason types.SkipReason) {
	l.logger.Debug().Str("package", pkg).Str("reason", string(reason)).Msg("Skipping dependency")
	result.Skipped = append(result.Skipped, types.Skip{Package: pkg, Reason: reason})
}

// skipNested records a scoped link whose scope directory is already
// another package's link. Creating it would write into that package.
func (l *Linker) skipNested(result *types.Result, link types.Link) {
	l.logger.Warn().
		Str("package", link.Package).
		Str("name", link.Name).
		Msg("Scope is already linked as a package")
	l.skip(result, link.Package, types.SkipInvalidName)
}

// scopeDir returns the directory a scoped link lives in, and false for
// links placed directly in target.
func scopeDir(target string, link types.Link) (string, bool) {
	parent := filepath.Dir(link.Path)
	return parent, parent != filepath.Clean(target)
}

func (l *Linker) isSymlink(path string) bool {
	info, err := l.fs.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

// validLinkName accepts "name" and "@scope/name"; anything that could
// escape the modules directory is rejected.
func validLinkName(name string) bool {
	if strings.ContainsRune(name, '\\') {
		return false
	}
	parts := strings.Split(name, "/")
	switch len(parts) {
	case 1:
		return validSegment(parts[0])
	case 2:
		return len(parts[0]) > 1 && strings.HasPrefix(parts[0], "@") && validSegment(parts[1])
	}
	return false
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".."
}

func packagePath(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "/" + name
}

func newResult(source, target string) *types.Result {
	return &types.Result{
		ModulesDir:     target,
		NodeModulesDir: source,
	}
}

// relName returns p relative to dir using forward slashes, the form
// link names take.
func relName(dir, p string) string {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}
