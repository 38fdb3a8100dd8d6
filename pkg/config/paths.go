package config

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/jibs-autolinker/pkg/errors"
	"github.com/arthur-debert/jibs-autolinker/pkg/logging"
	"github.com/arthur-debert/jibs-autolinker/pkg/types"
)

// WorkDir returns dir as an absolute path, or the process working
// directory when dir is empty.
func WorkDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrFileAccess, "failed to determine working directory")
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid directory %s", dir)
	}
	return abs, nil
}

// ResolveModulesDir returns the directory links are created in: the
// configured "modules" path, else <workDir>/public/modules when public
// is a directory, else <workDir>/modules.
func ResolveModulesDir(cfg *types.Config, fsys types.FS, workDir string) string {
	d := GetDefaults()
	if cfg != nil && cfg.Modules != "" {
		return Resolve(workDir, cfg.Modules)
	}

	publicDir := Resolve(workDir, d.Dirs.Public)
	if info, err := fsys.Stat(publicDir); err == nil && info.IsDir() {
		return filepath.Join(publicDir, d.Dirs.Modules)
	}

	return Resolve(workDir, d.Dirs.Modules)
}

// ResolveNodeModulesDir returns the dependency directory to scan. It
// does not check that the directory exists.
func ResolveNodeModulesDir(cfg *types.Config, workDir string) string {
	if cfg != nil && cfg.NodeModules != "" {
		return Resolve(workDir, cfg.NodeModules)
	}
	return Resolve(workDir, GetDefaults().Dirs.NodeModules)
}

// EnsureDir creates dir and its parents. Failure is logged, not
// returned: a missing modules directory surfaces later as a clean error.
func EnsureDir(fsys types.FS, dir string) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		logger := logging.GetLogger("config")
		logger.Debug().Err(err).Str("path", dir).Msg("Could not create directory")
	}
}

// Resolve returns path made absolute against base
func Resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
