// Package testutil holds small fixtures shared by the qalsh-chamfer
// package test suites.
package testutil

import (
	"os"
	"testing"
)

// TempDir creates a temporary directory for a test's index files and
// point sets, removed automatically when the test completes.
func TempDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "qalsh-chamfer-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}
