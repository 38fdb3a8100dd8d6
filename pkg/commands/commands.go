// Package commands provides the high-level operations behind the CLI.
//
// Every command follows the same flow: load the configuration once,
// resolve the modules and dependency directories against the working
// directory, then hand both to the linker.
package commands

import (
	"github.com/arthur-debert/jibs-autolinker/pkg/config"
	"github.com/arthur-debert/jibs-autolinker/pkg/filesystem"
	"github.com/arthur-debert/jibs-autolinker/pkg/linker"
	"github.com/arthur-debert/jibs-autolinker/pkg/logging"
	"github.com/arthur-debert/jibs-autolinker/pkg/types"
	"github.com/rs/zerolog"
)

// Options are shared by all commands
type Options struct {
	// WorkDir is the project root. Empty means the process working directory.
	WorkDir string
	// ConfigFile overrides <WorkDir>/.jibs-autolinker.json
	ConfigFile string
	// DryRun reports planned changes without touching the filesystem
	DryRun bool
	// FS defaults to the OS filesystem
	FS types.FS
}

// session holds what every command needs once configuration is resolved
type session struct {
	fs          types.FS
	config      *types.Config
	modules     string
	nodeModules string
	logger      zerolog.Logger
}

func newSession(opts Options, command string) (*session, error) {
	logger := logging.GetLogger("commands")
	logger.Debug().Str("command", command).Msg("Executing command")

	workDir, err := config.WorkDir(opts.WorkDir)
	if err != nil {
		return nil, err
	}

	var cfg *types.Config
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFile(config.Resolve(workDir, opts.ConfigFile))
	} else {
		cfg, err = config.Load(workDir)
	}
	if err != nil {
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	s := &session{
		fs:          fsys,
		config:      cfg,
		modules:     config.ResolveModulesDir(cfg, fsys, workDir),
		nodeModules: config.ResolveNodeModulesDir(cfg, workDir),
		logger:      logger,
	}
	logger.Debug().
		Str("work_dir", workDir).
		Str("modules", s.modules).
		Str("node_modules", s.nodeModules).
		Msg("Resolved directories")
	return s, nil
}

func (s *session) linker() *linker.Linker {
	return linker.New(s.fs, s.config)
}

// Link removes stale links from the modules directory and links every
// qualifying dependency. With DryRun it only plans.
func Link(opts Options) (*types.Result, error) {
	s, err := newSession(opts, "link")
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return s.linker().Plan(s.nodeModules, s.modules)
	}

	config.EnsureDir(s.fs, s.modules)
	result, err := s.linker().Sync(s.nodeModules, s.modules)
	if err != nil {
		return result, err
	}

	s.logger.Info().
		Str("command", "link").
		Int("removed", len(result.Removed)).
		Int("linked", len(result.Linked)).
		Int("skipped", len(result.Skipped)).
		Msg("Command finished")
	return result, nil
}

// Clean removes every link from the modules directory
func Clean(opts Options) (*types.Result, error) {
	s, err := newSession(opts, "clean")
	if err != nil {
		return nil, err
	}

	result := &types.Result{ModulesDir: s.modules, DryRun: opts.DryRun}
	l := s.linker()

	if opts.DryRun {
		result.Removed, err = l.Links(s.modules)
		return result, err
	}

	config.EnsureDir(s.fs, s.modules)
	result.Removed, err = l.Clean(s.modules)
	if err != nil {
		return result, err
	}

	s.logger.Info().Str("command", "clean").Int("removed", len(result.Removed)).Msg("Command finished")
	return result, nil
}

// Status compares the modules directory with what Link would produce
func Status(opts Options) (*types.StatusReport, error) {
	s, err := newSession(opts, "status")
	if err != nil {
		return nil, err
	}
	return s.linker().Status(s.nodeModules, s.modules)
}
