// Package manifest reads the package.json of a dependency and extracts
// the fields the linker cares about.
package manifest

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/jibs-autolinker/pkg/errors"
	"github.com/arthur-debert/jibs-autolinker/pkg/types"
)

// FileName is the manifest file looked up in every dependency directory
const FileName = "package.json"

// Manifest is a parsed package.json. Fields keep their raw JSON type so
// callers can tell a string "browser" entry from an object mapping.
type Manifest struct {
	Path   string
	Fields map[string]interface{}
}

// Load reads and parses the manifest in dir. Missing, unreadable and
// unparsable manifests are all reported as errors.
func Load(fsys types.FS, dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "failed to read %s", path).
			WithDetail("path", path)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse %s", path).
			WithDetail("path", path)
	}
	if fields == nil {
		return nil, errors.Newf(errors.ErrManifestParse, "%s is not a JSON object", path).
			WithDetail("path", path)
	}

	return &Manifest{Path: path, Fields: fields}, nil
}

// BrowserEntry returns the browser field when it is a non-empty string.
// Object mappings for multiple bundles are not supported and report false.
func (m *Manifest) BrowserEntry() (string, bool) {
	return m.stringField("browser")
}

// PackageName returns the name field when it is a non-empty string.
func (m *Manifest) PackageName() (string, bool) {
	return m.stringField("name")
}

// DisplayVersion returns the version field, normalised when it parses
// as semver and verbatim otherwise.
func (m *Manifest) DisplayVersion() string {
	raw, ok := m.stringField("version")
	if !ok {
		return ""
	}
	v, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return raw
	}
	return v.String()
}

// ResolveBrowserDir returns the directory containing the browser entry,
// resolved against the directory the manifest lives in.
func (m *Manifest) ResolveBrowserDir() (string, bool) {
	entry, ok := m.BrowserEntry()
	if !ok {
		return "", false
	}
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(filepath.Dir(m.Path), entry)
	}
	return filepath.Dir(filepath.Clean(entry)), true
}

func (m *Manifest) stringField(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m.Fields[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
