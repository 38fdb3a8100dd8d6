package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/jibs-autolinker/pkg/filesystem"
	"github.com/arthur-debert/jibs-autolinker/pkg/logging"
	"github.com/arthur-debert/jibs-autolinker/pkg/types"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".jibs-autolinker.json"), []byte(content), 0644))
}

func TestGetDefaults(t *testing.T) {
	d := GetDefaults()
	assert.Equal(t, ".jibs-autolinker.json", d.ConfigFile)
	assert.Equal(t, "JIBS_AUTOLINKER_", d.EnvPrefix)
	assert.Equal(t, Dirs{Public: "public", Modules: "modules", NodeModules: "node_modules"}, d.Dirs)
}

// captureLog sends the global logger to a buffer for the rest of the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	original, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(level)
	})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(buf)
	return buf
}

func TestLoadDefaultsFallback(t *testing.T) {
	logs := captureLog(t)

	d := loadDefaults([]byte("this is = not [valid toml"))
	assert.Equal(t, "modules", d.Dirs.Modules)
	assert.Equal(t, ".jibs-autolinker.json", d.ConfigFile)
	assert.Contains(t, logs.String(), "Using built-in defaults")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no file
		env     map[string]string
		want    types.Config
	}{
		{
			name: "no file",
			want: types.Config{},
		},
		{
			name:    "full file",
			content: `{"modules":"web/mods","node_modules":"deps","include":["a","b"],"exclude":["b"]}`,
			want: types.Config{
				Modules:     "web/mods",
				NodeModules: "deps",
				Include:     []string{"a", "b"},
				Exclude:     []string{"b"},
			},
		},
		{
			name:    "invalid json is ignored",
			content: `{"modules": `,
			want:    types.Config{},
		},
		{
			name:    "non-object document is ignored",
			content: `["modules"]`,
			want:    types.Config{},
		},
		{
			name:    "ill-typed keys are dropped, others kept",
			content: `{"modules": 5, "include": "react", "exclude": ["vue"]}`,
			want:    types.Config{Exclude: []string{"vue"}},
		},
		{
			name:    "non-string include items drop the list only",
			content: `{"include": [{"a": 1}], "modules": "x"}`,
			want:    types.Config{Modules: "x"},
		},
		{
			name:    "nested exclude items drop the list only",
			content: `{"exclude": [["a"]], "include": ["react"]}`,
			want:    types.Config{Include: []string{"react"}},
		},
		{
			name:    "null list is dropped",
			content: `{"include": null, "node_modules": "deps"}`,
			want:    types.Config{NodeModules: "deps"},
		},
		{
			name:    "unknown keys are ignored",
			content: `{"bundler": "none", "modules": "m"}`,
			want:    types.Config{Modules: "m"},
		},
		{
			name:    "environment overrides file",
			content: `{"modules":"from-file","include":["a"]}`,
			env: map[string]string{
				"JIBS_AUTOLINKER_MODULES": "from-env",
				"JIBS_AUTOLINKER_INCLUDE": "react,vue",
			},
			want: types.Config{
				Modules: "from-env",
				Include: []string{"react", "vue"},
			},
		},
		{
			name: "environment without file",
			env: map[string]string{
				"JIBS_AUTOLINKER_NODE_MODULES": "vendor/npm",
				"JIBS_AUTOLINKER_EXCLUDE":      "lodash",
			},
			want: types.Config{
				NodeModules: "vendor/npm",
				Exclude:     []string{"lodash"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				writeConfig(t, dir, tt.content)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Modules, cfg.Modules)
			assert.Equal(t, tt.want.NodeModules, cfg.NodeModules)
			assert.ElementsMatch(t, tt.want.Include, cfg.Include)
			assert.ElementsMatch(t, tt.want.Exclude, cfg.Exclude)
		})
	}
}

func TestDecode_RejectedValueGivesEmptyConfig(t *testing.T) {
	k := koanf.New(".")
	require.NoError(t, k.Set("modules", "web"))
	require.NoError(t, k.Set("include", []interface{}{map[string]interface{}{"a": 1}}))

	logs := captureLog(t)

	cfg := decode(k, logging.GetLogger("config"))
	require.NotNil(t, cfg)
	assert.Equal(t, types.Config{}, *cfg)
	assert.Contains(t, logs.String(), "Ignoring undecodable configuration")
}

func TestLoadFileExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"include":["preact"]}`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"preact"}, cfg.Include)
}

func TestValidate(t *testing.T) {
	issues, err := Validate(map[string]interface{}{
		"modules": "ok",
		"include": []interface{}{"a"},
	})
	require.NoError(t, err)
	assert.Empty(t, issues)

	issues, err = Validate(map[string]interface{}{
		"node_modules": true,
	})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "node_modules", issues[0].Key)
	assert.Equal(t, "/node_modules", issues[0].Path)
	assert.NotEmpty(t, issues[0].Message)
	assert.Contains(t, issues[0].String(), "/node_modules: ")

	issues, err = Validate(map[string]interface{}{
		"exclude": []interface{}{"a", float64(2)},
	})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "exclude", issues[0].Key)
	assert.Equal(t, "/exclude/1", issues[0].Path)
}

func TestResolveModulesDir(t *testing.T) {
	fsys := filesystem.NewOS()

	t.Run("defaults to modules", func(t *testing.T) {
		wd := t.TempDir()
		assert.Equal(t, filepath.Join(wd, "modules"), ResolveModulesDir(&types.Config{}, fsys, wd))
	})

	t.Run("uses public/modules when public is a directory", func(t *testing.T) {
		wd := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(wd, "public"), 0755))
		assert.Equal(t, filepath.Join(wd, "public", "modules"), ResolveModulesDir(nil, fsys, wd))
	})

	t.Run("ignores public when it is a file", func(t *testing.T) {
		wd := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(wd, "public"), nil, 0644))
		assert.Equal(t, filepath.Join(wd, "modules"), ResolveModulesDir(nil, fsys, wd))
	})

	t.Run("configured path wins over public", func(t *testing.T) {
		wd := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(wd, "public"), 0755))
		cfg := &types.Config{Modules: "static/js/../vendor"}
		assert.Equal(t, filepath.Join(wd, "static", "vendor"), ResolveModulesDir(cfg, fsys, wd))
	})

	t.Run("absolute configured path", func(t *testing.T) {
		wd := t.TempDir()
		abs := filepath.Join(t.TempDir(), "out")
		assert.Equal(t, abs, ResolveModulesDir(&types.Config{Modules: abs}, fsys, wd))
	})
}

func TestResolveNodeModulesDir(t *testing.T) {
	wd := t.TempDir()
	assert.Equal(t, filepath.Join(wd, "node_modules"), ResolveNodeModulesDir(nil, wd))
	assert.Equal(t, filepath.Join(wd, "deps"), ResolveNodeModulesDir(&types.Config{NodeModules: "deps"}, wd))
}

func TestEnsureDir(t *testing.T) {
	fsys := filesystem.NewOS()
	wd := t.TempDir()

	dir := filepath.Join(wd, "public", "modules")
	EnsureDir(fsys, dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Existing directories and failures are both silent.
	EnsureDir(fsys, dir)
	blocker := filepath.Join(wd, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	EnsureDir(fsys, filepath.Join(blocker, "modules"))
}

func TestWorkDir(t *testing.T) {
	wd, err := WorkDir("")
	require.NoError(t, err)
	cwd, _ := os.Getwd()
	assert.Equal(t, cwd, wd)

	dir := t.TempDir()
	got, err := WorkDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}
