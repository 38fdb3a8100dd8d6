package linker

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jibs-autolinker/pkg/errors"
)

// Clean removes every symlink directly inside dir, plus symlinks one
// level down in @scope directories. Regular files and directories are
// never touched. It returns the removed paths.
func (l *Linker) Clean(dir string) ([]string, error) {
	links, err := l.symlinks(dir)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(links))
	for _, link := range links {
		if err := l.fs.Remove(link); err != nil {
			return removed, errors.Wrapf(err, errors.ErrSymlinkRemove, "failed to remove %s", link).
				WithDetail("path", link)
		}
		l.logger.Debug().Str("path", link).Msg("Removed link")
		removed = append(removed, link)
	}
	return removed, nil
}

// symlinks lists the links Clean would remove from dir.
func (l *Linker) symlinks(dir string) ([]string, error) {
	return l.collectSymlinks(dir, 0)
}

func (l *Linker) collectSymlinks(dir string, depth int) ([]string, error) {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirRead, "failed to read modules directory %s", dir).
			WithDetail("path", dir)
	}

	var links []string
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		info, err := l.fs.Lstat(full)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", full).
				WithDetail("path", full)
		}

		if info.Mode()&fs.ModeSymlink != 0 {
			links = append(links, full)
			continue
		}

		if info.IsDir() && strings.HasPrefix(entry.Name(), "@") && depth < maxScopeDepth {
			scoped, err := l.collectSymlinks(full, depth+1)
			if err != nil {
				return nil, err
			}
			links = append(links, scoped...)
		}
	}
	return links, nil
}
