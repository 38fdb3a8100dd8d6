// Package types holds the data model shared by the linker, its
// configuration layer and the command line: the filesystem interface,
// the user configuration, link mappings and run results.
package types
