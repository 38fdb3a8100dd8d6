package types

// Link is a symlink mapping derived from a dependency's manifest.
type Link struct {
	// Name is the link name relative to the modules directory, e.g.
	// "react" or "@scope/pkg"
	Name string `json:"name"`
	// Path is the absolute path of the symlink itself
	Path string `json:"path"`
	// Target is the directory containing the browser entry
	Target string `json:"target"`
	// Package is the entry path relative to the dependency directory
	Package string `json:"package"`
	// Version is the manifest version, when present
	Version string `json:"version,omitempty"`
}

// SkipReason explains why a dependency entry produced no link
type SkipReason string

const (
	SkipHidden      SkipReason = "hidden"
	SkipNotIncluded SkipReason = "not-included"
	SkipExcluded    SkipReason = "excluded"
	SkipNoManifest  SkipReason = "no-manifest"
	SkipNoBrowser   SkipReason = "no-browser"
	SkipInvalidName SkipReason = "invalid-name"
)

// Skip records a dependency entry that was not linked
type Skip struct {
	Package string     `json:"package"`
	Reason  SkipReason `json:"reason"`
}

// Result is the outcome of a clean, link or sync run. In dry-run mode
// it describes what would happen.
type Result struct {
	ModulesDir     string   `json:"modules_dir"`
	NodeModulesDir string   `json:"node_modules_dir"`
	DryRun         bool     `json:"dry_run"`
	Removed        []string `json:"removed"`
	Linked         []Link   `json:"linked"`
	Skipped        []Skip   `json:"skipped"`
	// Conflicts lists planned links whose path is already taken.
	// Only filled in dry-run mode; a real run fails on the first one.
	Conflicts []Link `json:"conflicts,omitempty"`
	// Entries are the top-level names read from the dependency directory
	Entries []string `json:"entries"`
}

// LinkState is the state of one link in a status report
type LinkState string

const (
	// LinkLinked means the symlink exists and points at the expected target
	LinkLinked LinkState = "linked"
	// LinkMissing means the dependency qualifies but has no symlink yet
	LinkMissing LinkState = "missing"
	// LinkStale means a symlink exists that the next run will remove or replace
	LinkStale LinkState = "stale"
	// LinkConflict means the link path is occupied by a regular file or directory
	LinkConflict LinkState = "conflict"
)

// LinkStatus describes one entry of a status report
type LinkStatus struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	State   LinkState `json:"state"`
	Target  string    `json:"target,omitempty"`
	Current string    `json:"current,omitempty"`
	Version string    `json:"version,omitempty"`
}

// StatusReport compares the modules directory with what a sync would produce
type StatusReport struct {
	ModulesDir     string       `json:"modules_dir"`
	NodeModulesDir string       `json:"node_modules_dir"`
	Links          []LinkStatus `json:"links"`
}
