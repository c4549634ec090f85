// pkg/diskusage/fetch.go

package diskusage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/httpclient"
	"github.com/sony/gobreaker"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// MaxArchiveSize bounds how much of a response is read.
const MaxArchiveSize = 64 << 20

// ErrResourceNotFound is returned when the group has no archive.
var ErrResourceNotFound = errors.New("archive not found")

// Fetcher retrieves the raw archive for a group.
type Fetcher interface {
	Fetch(ctx context.Context, group string) ([]byte, error)
}

// HTTPFetcher downloads rrd/<group>.rrd from a web server. Requests are not
// retried; five consecutive failures open the breaker for Cooldown.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// Cooldown is how long the breaker stays open.
var Cooldown = 30 * time.Second

func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = httpclient.DefaultClient()
	}
	f := &HTTPFetcher{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
	f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "rrd-fetch",
		Timeout: Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrResourceNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return f
}

// URL returns the address fetched for group.
func (f *HTTPFetcher) URL(group string) string {
	return f.BaseURL + "/" + ResourcePath(group)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, group string) ([]byte, error) {
	log := otelzap.Ctx(ctx)
	url := f.URL(group)

	out, err := f.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				log.Debug("Failed to close response body", zap.Error(cerr))
			}
		}()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("GET %s: %w", url, ErrResourceNotFound)
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
		}
		return io.ReadAll(io.LimitReader(resp.Body, MaxArchiveSize))
	})
	if err != nil {
		log.Warn("Archive fetch failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}

	body := out.([]byte)
	log.Debug("Archive fetched", zap.String("url", url), zap.Int("bytes", len(body)))
	return body, nil
}

// DirFetcher reads <Dir>/<group>.rrd from local disk.
type DirFetcher struct {
	Dir string
}

func (d DirFetcher) Path(group string) string {
	return filepath.Join(d.Dir, group+".rrd")
}

func (d DirFetcher) Fetch(ctx context.Context, group string) ([]byte, error) {
	path := d.Path(group)
	fh, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrResourceNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil {
			otelzap.Ctx(ctx).Debug("Failed to close archive", zap.String("path", path), zap.Error(cerr))
		}
	}()
	return io.ReadAll(io.LimitReader(fh, MaxArchiveSize))
}

// NewFetcher reads archives over HTTP when baseURL is set and from dir otherwise.
func NewFetcher(baseURL, dir string, client *http.Client) Fetcher {
	if baseURL != "" {
		return NewHTTPFetcher(baseURL, client)
	}
	return DirFetcher{Dir: dir}
}
