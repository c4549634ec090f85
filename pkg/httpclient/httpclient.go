// pkg/httpclient/httpclient.go

package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config represents HTTP client configuration options
type Config struct {
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent          string        `mapstructure:"user_agent" yaml:"user_agent"`
	CACert             string        `mapstructure:"ca_cert" yaml:"ca_cert"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		UserAgent: "gscadmin",
	}
}

var defaultClient = mustClient(DefaultConfig())

// DefaultClient returns the preconfigured HTTP client shared across gscadmin
func DefaultClient() *http.Client {
	return defaultClient
}

// SetDefaultClient allows replacing the default client for testing purposes
func SetDefaultClient(client *http.Client) {
	defaultClient = client
}

// NewClient builds an HTTP client from cfg. The client never retries.
func NewClient(cfg Config) (*http.Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	tlsCfg, err := TLSConfigFor(cfg.CACert, "", cfg.InsecureSkipVerify)
	if err != nil {
		return nil, err
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: tlsCfg,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.UserAgent != "" {
		rt = &userAgentTransport{base: rt, agent: cfg.UserAgent}
	}

	return &http.Client{Timeout: cfg.Timeout, Transport: rt}, nil
}

func mustClient(cfg Config) *http.Client {
	c, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.agent)
	}
	return t.base.RoundTrip(req)
}
