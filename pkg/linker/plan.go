package linker

import (
	stderrors "errors"
	"io/fs"
	"sort"

	"github.com/arthur-debert/jibs-autolinker/pkg/types"
)

// Plan reports what Sync would do without touching the filesystem.
// Links whose path is occupied by something Clean would keep, or that
// collide with an earlier link of the same name, are reported as
// conflicts; a real run would fail on the first of them.
func (l *Linker) Plan(source, target string) (*types.Result, error) {
	result := newResult(source, target)
	result.DryRun = true

	removed, err := l.Links(target)
	if err != nil {
		return result, err
	}
	result.Removed = removed

	seen := make(map[string]bool)
	entries, err := l.walk(source, target, "", 0, result, func(link types.Link) error {
		if parent, scoped := scopeDir(target, link); scoped && seen[parent] {
			l.skipNested(result, link)
			return nil
		}
		if seen[link.Path] || l.occupied(link.Path) {
			result.Conflicts = append(result.Conflicts, link)
			return nil
		}
		seen[link.Path] = true
		result.Linked = append(result.Linked, link)
		return nil
	})
	result.Entries = entries
	return result, err
}

// Status compares the links currently in target with the links a sync
// would create. Entries are sorted by name.
func (l *Linker) Status(source, target string) (*types.StatusReport, error) {
	report := &types.StatusReport{ModulesDir: target, NodeModulesDir: source}

	current, err := l.Links(target)
	if err != nil {
		return nil, err
	}
	unclaimed := make(map[string]bool, len(current))
	for _, p := range current {
		unclaimed[p] = true
	}

	var planned []types.Link
	claimed := make(map[string]bool)
	_, err = l.walk(source, target, "", 0, newResult(source, target), func(link types.Link) error {
		if parent, scoped := scopeDir(target, link); scoped && claimed[parent] {
			return nil
		}
		claimed[link.Path] = true
		planned = append(planned, link)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, link := range planned {
		status := types.LinkStatus{
			Name:    link.Name,
			Path:    link.Path,
			Target:  link.Target,
			Version: link.Version,
		}
		delete(unclaimed, link.Path)

		info, err := l.fs.Lstat(link.Path)
		switch {
		case err != nil:
			status.State = types.LinkMissing
		case info.Mode()&fs.ModeSymlink == 0:
			status.State = types.LinkConflict
		default:
			status.Current = l.readlink(link.Path)
			if status.Current == link.Target {
				status.State = types.LinkLinked
			} else {
				status.State = types.LinkStale
			}
		}
		report.Links = append(report.Links, status)
	}

	for p := range unclaimed {
		current := l.readlink(p)
		report.Links = append(report.Links, types.LinkStatus{
			Name:    relName(target, p),
			Path:    p,
			State:   types.LinkStale,
			Current: current,
		})
	}

	sort.SliceStable(report.Links, func(i, j int) bool {
		return report.Links[i].Name < report.Links[j].Name
	})
	return report, nil
}

// Links lists the symlinks Clean would remove from dir. A directory that
// does not exist yet has none.
func (l *Linker) Links(dir string) ([]string, error) {
	if _, err := l.fs.Stat(dir); stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return l.symlinks(dir)
}

// readlink returns the target of the link at path, or "" when it cannot
// be read. Such a link never matches its planned target.
func (l *Linker) readlink(path string) string {
	current, err := l.fs.Readlink(path)
	if err != nil {
		l.logger.Warn().Err(err).Str("path", path).Msg("Cannot read link")
	}
	return current
}

// occupied reports whether path holds something Clean would not remove.
func (l *Linker) occupied(path string) bool {
	info, err := l.fs.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&fs.ModeSymlink == 0
}
