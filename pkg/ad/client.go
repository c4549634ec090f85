// pkg/ad/client.go

package ad

import (
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/httpclient"
	"github.com/go-ldap/ldap/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type conn interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Add(req *ldap.AddRequest) error
	Del(req *ldap.DelRequest) error
	Close() error
}

// Client is a bound connection to one domain controller.
type Client struct {
	conn conn
	cfg  Config
	dc   string
}

var (
	dialURL = ldap.DialURL
	pickDC  = func(n int) int { return rand.IntN(n) }
)

// Connect binds to a randomly chosen domain controller.
func Connect(rc *gsc_io.RuntimeContext, cfg Config) (*Client, error) {
	log := otelzap.Ctx(rc.Ctx)

	if len(cfg.DomainControllers) == 0 {
		return nil, gsc_err.NewValidationError("no domain controllers configured",
			"Set ad.domain_controllers in the config file or GSCADMIN_AD_DOMAIN_CONTROLLERS")
	}
	dc := cfg.DomainControllers[pickDC(len(cfg.DomainControllers))]

	tlsCfg, err := httpclient.TLSConfigFor(cfg.CACert, dc, cfg.InsecureSkipVerify)
	if err != nil {
		return nil, gsc_err.NewValidationError(fmt.Sprintf("invalid AD TLS settings: %v", err))
	}

	scheme := "ldap"
	opts := []ldap.DialOpt{ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout})}
	if cfg.UseSSL {
		scheme = "ldaps"
		opts = append(opts, ldap.DialWithTLSConfig(tlsCfg))
	}
	url := fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(dc, strconv.Itoa(cfg.port())))

	log.Debug("Connecting to domain controller", zap.String("url", url))
	c, err := dialURL(url, opts...)
	if err != nil {
		return nil, gsc_err.NewNetworkError("Could not connect to the domain controller", err,
			fmt.Sprintf("Check that %s is reachable", url))
	}
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}

	fail := func(e error) (*Client, error) {
		if cerr := c.Close(); cerr != nil {
			log.Warn("Failed to close AD connection", zap.Error(cerr))
		}
		return nil, e
	}

	if cfg.UseTLS && !cfg.UseSSL {
		if err := c.StartTLS(tlsCfg); err != nil {
			return fail(gsc_err.NewNetworkError("Was not able to start encrypted session with the domain controller", err))
		}
	}

	switch cfg.BindMethod {
	case BindNTLM:
		err = c.NTLMBind(cfg.Domain, cfg.Username, cfg.Password)
	default:
		err = c.Bind(cfg.Principal(), cfg.Password)
	}
	if err != nil {
		return fail(gsc_err.NewAuthError("Active Directory bind failed", err,
			"Verify ad.username and the AD password (ad.password or ad.password_vault_path)"))
	}

	log.Info("Bound to domain controller", zap.String("dc", dc), zap.String("bind_method", cfg.BindMethod))
	return &Client{conn: c, cfg: cfg, dc: dc}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// DomainController is the host this client is bound to.
func (c *Client) DomainController() string {
	return c.dc
}
