/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	// Subcommands
	configcmd "github.com/CodeMonkeyCybersecurity/gscadmin/cmd/config"
	"github.com/CodeMonkeyCybersecurity/gscadmin/cmd/create"
	"github.com/CodeMonkeyCybersecurity/gscadmin/cmd/delete"
	"github.com/CodeMonkeyCybersecurity/gscadmin/cmd/read"
	"github.com/CodeMonkeyCybersecurity/gscadmin/cmd/serve"
)

// RootCmd is the base command for gscadmin.
var RootCmd = &cobra.Command{
	Use:   shared.GscID,
	Short: "GSC account provisioning and disk usage tooling",
	Long: `gscadmin copies accounts from the GSC LDAP directory into Active Directory,
removes them again, and serves the disk usage charts built from RRD archives.`,
	Version:       shared.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var registerOnce sync.Once

// RegisterCommands adds all subcommands and the shared configuration flags.
func RegisterCommands() {
	pf := RootCmd.PersistentFlags()
	pf.String(config.ConfigFlag, "", "Config file (default: gscadmin.yaml in "+strings.Join(config.SearchPaths(), ", ")+")")
	cli.AddConfigFlag(pf, "ldap-host", "ldap.fqdn", "", "LDAP server host name")
	cli.AddConfigFlag(pf, "ldap-base-dn", "ldap.base_dn", "", "LDAP search base")
	cli.AddConfigSliceFlag(pf, "ad-dc", "ad.domain_controllers", nil, "Active Directory domain controllers")
	cli.AddConfigFlag(pf, "ad-base-dn", "ad.base_dn", "", "Active Directory base DN")
	cli.AddConfigFlag(pf, "ad-user", "ad.username", "", "Account used to bind to Active Directory")
	cli.AddConfigFlag(pf, "vault-addr", "vault.address", "", "Vault server holding the provisioning secrets")

	for _, subCmd := range []*cobra.Command{
		create.CreateCmd,
		delete.DeleteCmd,
		read.ReadCmd,
		serve.ServeCmd,
		configcmd.ConfigCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Run executes the command line in args and returns the process exit code.
// Usage errors print the command's usage text on stdout; every other error is
// reported on stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	registerOnce.Do(RegisterCommands)

	RootCmd.SetArgs(args)
	RootCmd.SetOut(stdout)
	RootCmd.SetErr(stderr)

	err := RootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if usage, ok := gsc_err.UsageText(err); ok {
		fmt.Fprint(stdout, usage)
		logger.L().Debug("Usage error", zap.Strings("args", args))
	} else {
		gsc_err.PrintError(stderr, shared.GscID+" failed", err)
	}
	return gsc_err.GetExitCode(err)
}
