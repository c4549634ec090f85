// cmd/serve/diskusage.go

package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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

const shutdownTimeout = 10 * time.Second

// listen is replaced in tests to learn the bound address.
var listen = func(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

var serveDiskUsageCmd = &cobra.Command{
	Use:   "diskusage",
	Short: "Serve the disk usage widget",
	Long: `Serves /diskusage.html?<group>, which charts rrd/<group>.rrd, together with
the decoded series under /api/series/<group> and the raw archives under /rrd/.`,
	Args: cobra.NoArgs,
	RunE: gsc_cli.Wrap(func(rc *gsc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		log := otelzap.Ctx(rc.Ctx)

		cfg, err := config.FromCommand(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(config.SectionDiskUsage); err != nil {
			return err
		}
		client, err := httpclient.NewClient(cfg.HTTP)
		if err != nil {
			return gsc_err.NewValidationError(fmt.Sprintf("invalid http settings: %v", err))
		}

		f := diskusage.NewFetcher(cfg.DiskUsage.BaseURL, cfg.DiskUsage.RRDDir, client)
		srv := &http.Server{
			Handler:           diskusage.NewHandler(f, cfg.DiskUsage.Limits),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return rc.Ctx },
		}

		ln, err := listen(cfg.DiskUsage.Listen)
		if err != nil {
			return gsc_err.NewNetworkError(fmt.Sprintf("cannot listen on %s", cfg.DiskUsage.Listen), err,
				"Choose another address with --listen")
		}

		ctx, stop := signal.NotifyContext(rc.Ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(ln) }()

		source := cfg.DiskUsage.RRDDir
		if cfg.DiskUsage.BaseURL != "" {
			source = cfg.DiskUsage.BaseURL
		}
		log.Info("Disk usage widget listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("source", source))
		fmt.Fprintf(cmd.OutOrStdout(), "Serving http://%s/diskusage.html\n", ln.Addr())

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return gsc_err.NewNetworkError("disk usage server stopped", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("Shutting down disk usage widget")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return gsc_err.NewInternalError("graceful shutdown failed", err)
		}
		return nil
	}),
}

func init() {
	fs := serveDiskUsageCmd.Flags()
	cli.AddConfigFlag(fs, "listen", "diskusage.listen", "", "Address to listen on")
	cli.AddConfigFlag(fs, "rrd-dir", "diskusage.rrd_dir", "", "Directory holding <group>.rrd archives")
	cli.AddConfigFlag(fs, "base-url", "diskusage.base_url", "", "Fetch archives from this web server instead of rrd-dir")
}
