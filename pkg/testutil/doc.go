// Package testutil provides helpers for building dependency trees and
// asserting on symlinks in tests.
package testutil
