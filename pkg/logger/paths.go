/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/xdg"
)

// PlatformLogPaths returns fallback log paths in order of priority for the platform.
func PlatformLogPaths() []string {
	if p := os.Getenv("GSCADMIN_LOG_FILE"); p != "" {
		return []string{p}
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{
			xdg.XDGStatePath(shared.GscID, "gscadmin.log"),
			shared.GscLogsPWD,
			"/tmp/gscadmin/gscadmin.log",
		}
	case "linux":
		return []string{
			shared.GscLogs, // writable when run as root on the provisioning host
			xdg.XDGStatePath(shared.GscID, "gscadmin.log"),
			shared.GscLogsPWD,
			"/tmp/gscadmin/gscadmin.log",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramData"), shared.GscID, "gscadmin.log"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), shared.GscID, "gscadmin.log"),
			".\\gscadmin.log",
		}
	default:
		return []string{shared.GscLogsPWD}
	}
}
