// pkg/testutil/env.go

package testutil

import (
	"testing"
)

// IsolateConfig runs the test in an empty working directory with an empty HOME,
// so no gscadmin.yaml or .env from the machine reaches config loading.
// The working directory is returned.
func IsolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}
