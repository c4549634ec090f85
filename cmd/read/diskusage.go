// cmd/read/diskusage.go

package read

import (
	"encoding/json"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/diskusage"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/httpclient"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var readDiskUsageCmd = &cobra.Command{
	Use:   "diskusage <group>",
	Short: "Print the newest disk usage samples of a group",
	Long: `Loads rrd/<group>.rrd from diskusage.base_url, or from diskusage.rrd_dir
when no base URL is set, and prints the newest rows of its first archive.`,
	Args: gsc_cli.ExactArgs(1),
	RunE: gsc_cli.Wrap(func(rc *gsc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		log := otelzap.Ctx(rc.Ctx)

		group, err := diskusage.ValidateGroup(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.FromCommand(cmd)
		if err != nil {
			return err
		}
		client, err := httpclient.NewClient(cfg.HTTP)
		if err != nil {
			return gsc_err.NewValidationError(fmt.Sprintf("invalid http settings: %v", err))
		}

		f := diskusage.NewFetcher(cfg.DiskUsage.BaseURL, cfg.DiskUsage.RRDDir, client)
		series, err := diskusage.LoadSeries(rc.Ctx, f, group)
		if err != nil {
			return err
		}
		log.Info("Loaded disk usage series",
			zap.String("group", group),
			zap.Time("last_update", series.LastUpdate))

		out := cmd.OutOrStdout()
		if cli.GetBool(cmd, "json") {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(series)
		}
		rows, _ := cmd.Flags().GetInt("rows")
		_, err = fmt.Fprintln(out, diskusage.RenderTable(series, rows))
		return err
	}),
}

func init() {
	readDiskUsageCmd.Flags().Int("rows", 10, "Number of newest samples to print (0 for all)")
	readDiskUsageCmd.Flags().Bool("json", false, "Print the decoded series as JSON")
}
