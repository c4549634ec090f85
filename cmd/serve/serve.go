// cmd/serve/serve.go

package serve

import (
	"github.com/spf13/cobra"
)

// ServeCmd groups the long-running HTTP services.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP services",
	Long:  `Run long-lived HTTP services such as the disk usage widget.`,
}

func init() {
	ServeCmd.AddCommand(serveDiskUsageCmd)
}
