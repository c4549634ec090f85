package xdg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXDGPaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	t.Run("state falls back to home", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "")
		assert.Equal(t, filepath.Join("/home/tester", ".local", "state", "gscadmin", "gscadmin.log"),
			XDGStatePath("gscadmin", "gscadmin.log"))
	})

	t.Run("state honours env", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "/var/state")
		assert.Equal(t, "/var/state/gscadmin/gscadmin.log", XDGStatePath("gscadmin", "gscadmin.log"))
	})

	t.Run("config honours env", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
		assert.Equal(t, "/etc/xdg/gscadmin/config.yaml", XDGConfigPath("gscadmin", "config.yaml"))
	})
}
