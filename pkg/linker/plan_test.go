package linker

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/jibs-autolinker/pkg/filesystem"
	"github.com/arthur-debert/jibs-autolinker/pkg/testutil"
	"github.com/arthur-debert/jibs-autolinker/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_MakesNoChanges(t *testing.T) {
	_, source, target := project(t, testutil.FileTree{
		"react": testutil.Package(t, fields{"name": "react", "browser": "dist/react.js"}),
		"@scope": testutil.FileTree{
			"pkg": testutil.Package(t, fields{"name": "@scope/pkg", "browser": "index.js"}),
		},
	})
	testutil.CreateFileTree(t, target, testutil.FileTree{
		"stale": testutil.Symlink{Target: "/nowhere"},
	})

	result, err := New(filesystem.NewOS(), nil).Plan(source, target)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, []string{filepath.Join(target, "stale")}, result.Removed)
	require.Len(t, result.Linked, 2)
	assert.Empty(t, result.Conflicts)

	// Nothing was created or removed.
	assert.Equal(t, map[string]string{"stale": "/nowhere"}, testutil.Symlinks(t, target))
	testutil.AssertNotExists(t, filepath.Join(target, "@scope"))
}

func TestPlan_ReportsConflicts(t *testing.T) {
	_, source, target := project(t, testutil.FileTree{
		"a-fork": testutil.Package(t, fields{"name": "dup", "browser": "a.js"}),
		"b-fork": testutil.Package(t, fields{"name": "dup", "browser": "b.js"}),
		"react":  testutil.Package(t, fields{"name": "react", "browser": "r.js"}),
		"vue":    testutil.Package(t, fields{"name": "vue", "browser": "v.js"}),
	})
	testutil.CreateFileTree(t, target, testutil.FileTree{
		"react": "a regular file",
		// A symlink in the way is not a conflict: clean removes it first.
		"vue": testutil.Symlink{Target: "/old"},
	})

	result, err := New(filesystem.NewOS(), nil).Plan(source, target)
	require.NoError(t, err)

	var linked, conflicts []string
	for _, link := range result.Linked {
		linked = append(linked, link.Package)
	}
	for _, link := range result.Conflicts {
		conflicts = append(conflicts, link.Package)
	}
	assert.ElementsMatch(t, []string{"a-fork", "vue"}, linked)
	assert.ElementsMatch(t, []string{"b-fork", "react"}, conflicts)
}

func TestPlan_MissingTargetIsNotAnError(t *testing.T) {
	root := testutil.Project(t, testutil.FileTree{
		"node_modules": testutil.FileTree{
			"react": testutil.Package(t, fields{"browser": "r.js"}),
		},
	})

	result, err := New(filesystem.NewOS(), nil).Plan(filepath.Join(root, "node_modules"), filepath.Join(root, "modules"))
	require.NoError(t, err)
	assert.Empty(t, result.Removed)
	assert.Len(t, result.Linked, 1)
	testutil.AssertNotExists(t, filepath.Join(root, "modules"))
}

func TestStatus(t *testing.T) {
	_, source, target := project(t, testutil.FileTree{
		"linked":   testutil.Package(t, fields{"name": "linked", "browser": "dist/x.js", "version": "1.2"}),
		"missing":  testutil.Package(t, fields{"name": "missing", "browser": "x.js"}),
		"moved":    testutil.Package(t, fields{"name": "moved", "browser": "new/x.js"}),
		"occupied": testutil.Package(t, fields{"name": "occupied", "browser": "x.js"}),
	})
	testutil.CreateFileTree(t, target, testutil.FileTree{
		"linked":   testutil.Symlink{Target: filepath.Join(source, "linked", "dist")},
		"moved":    testutil.Symlink{Target: filepath.Join(source, "moved", "old")},
		"occupied": testutil.FileTree{},
		"@gone": testutil.FileTree{
			"pkg": testutil.Symlink{Target: "/nowhere"},
		},
	})

	report, err := New(filesystem.NewOS(), nil).Status(source, target)
	require.NoError(t, err)

	states := make(map[string]types.LinkState)
	var names []string
	for _, s := range report.Links {
		states[s.Name] = s.State
		names = append(names, s.Name)
	}

	assert.Equal(t, []string{"@gone/pkg", "linked", "missing", "moved", "occupied"}, names)
	assert.Equal(t, map[string]types.LinkState{
		"@gone/pkg": types.LinkStale,
		"linked":    types.LinkLinked,
		"missing":   types.LinkMissing,
		"moved":     types.LinkStale,
		"occupied":  types.LinkConflict,
	}, states)

	for _, s := range report.Links {
		switch s.Name {
		case "linked":
			assert.Equal(t, "1.2.0", s.Version)
		case "moved":
			assert.Equal(t, filepath.Join(source, "moved", "old"), s.Current)
			assert.Equal(t, filepath.Join(source, "moved", "new"), s.Target)
		case "@gone/pkg":
			assert.Equal(t, "/nowhere", s.Current)
		}
	}
}

func TestStatus_AfterSyncAllLinked(t *testing.T) {
	_, source, target := project(t, testutil.FileTree{
		"react": testutil.Package(t, fields{"name": "react", "browser": "dist/react.js"}),
		"@scope": testutil.FileTree{
			"pkg": testutil.Package(t, fields{"name": "@scope/pkg", "browser": "index.js"}),
		},
	})

	l := New(filesystem.NewOS(), nil)
	_, err := l.Sync(source, target)
	require.NoError(t, err)

	report, err := l.Status(source, target)
	require.NoError(t, err)
	require.Len(t, report.Links, 2)
	for _, s := range report.Links {
		assert.Equal(t, types.LinkLinked, s.State, s.Name)
	}
}

// unreadableLinks fails every Readlink
type unreadableLinks struct {
	types.FS
}

func (unreadableLinks) Readlink(name string) (string, error) {
	return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrPermission}
}

func TestStatus_UnreadableLinkIsStale(t *testing.T) {
	_, source, target := project(t, testutil.FileTree{
		"react": testutil.Package(t, fields{"name": "react", "browser": "dist/react.js"}),
	})
	_, err := New(filesystem.NewOS(), nil).Sync(source, target)
	require.NoError(t, err)

	report, err := New(unreadableLinks{filesystem.NewOS()}, nil).Status(source, target)
	require.NoError(t, err)
	require.Len(t, report.Links, 1)
	assert.Equal(t, types.LinkStale, report.Links[0].State)
	assert.Empty(t, report.Links[0].Current)
}

func TestClean_OnlyRemovesSymlinks(t *testing.T) {
	root := testutil.Project(t, testutil.FileTree{
		"modules": testutil.FileTree{
			"file.js": "x",
			"dir":     testutil.FileTree{"nested": testutil.Symlink{Target: "/kept"}},
			"link":    testutil.Symlink{Target: "/nowhere"},
			"@scope": testutil.FileTree{
				"pkg":  testutil.Symlink{Target: "/nowhere"},
				"real": testutil.FileTree{},
			},
		},
	})
	target := filepath.Join(root, "modules")

	removed, err := New(filesystem.NewOS(), nil).Clean(target)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(target, "link"),
		filepath.Join(target, "@scope", "pkg"),
	}, removed)

	for _, kept := range []string{"file.js", "dir", "dir/nested", "@scope", "@scope/real"} {
		_, err := os.Lstat(filepath.Join(target, filepath.FromSlash(kept)))
		assert.NoError(t, err, kept)
	}
}

func TestLinker_MemoryFS(t *testing.T) {
	mem := afero.NewMemMapFs()
	fsys := filesystem.NewAferoFS(mem)
	require.NoError(t, fsys.MkdirAll("/p/node_modules/react/dist", 0755))
	require.NoError(t, afero.WriteFile(mem, "/p/node_modules/react/package.json", []byte(`{"name":"react","browser":"dist/r.js"}`), 0644))
	require.NoError(t, fsys.MkdirAll("/p/modules", 0755))

	result, err := New(fsys, nil).Plan("/p/node_modules", "/p/modules")
	require.NoError(t, err)
	require.Len(t, result.Linked, 1)
	assert.Equal(t, "/p/node_modules/react/dist", result.Linked[0].Target)
	assert.Equal(t, "/p/modules/react", result.Linked[0].Path)
}
