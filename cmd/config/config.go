// cmd/config/config.go

package config

import (
	"github.com/spf13/cobra"
)

// ConfigCmd inspects the effective configuration.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect gscadmin configuration",
	Long:  `Inspect the configuration assembled from gscadmin.yaml, .env, GSCADMIN_* variables and flags.`,
}

func init() {
	ConfigCmd.AddCommand(showConfigCmd)
}
