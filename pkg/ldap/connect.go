// pkg/ldap/connect.go

package ldap

import (
	"fmt"
	"net"
	"strconv"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/httpclient"
	"github.com/go-ldap/ldap/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// searcher is the part of *ldap.Conn a Session needs after binding.
type searcher interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// Session is a bound connection to the source directory.
type Session struct {
	conn searcher
	cfg  Config
}

var dialURL = ldap.DialURL

// URL returns the ldap:// or ldaps:// address for cfg.
func (c Config) URL() string {
	scheme := "ldap"
	if c.UseLDAPS {
		scheme = "ldaps"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(c.FQDN, strconv.Itoa(c.Port)))
}

// Connect dials the directory, upgrades to TLS when configured and binds.
func Connect(rc *gsc_io.RuntimeContext, cfg Config) (*Session, error) {
	log := otelzap.Ctx(rc.Ctx)

	tlsCfg, err := httpclient.TLSConfigFor(cfg.CACert, cfg.FQDN, cfg.InsecureSkipVerify)
	if err != nil {
		return nil, gsc_err.NewValidationError(fmt.Sprintf("invalid LDAP TLS settings: %v", err),
			"Check ldap.ca_cert points at a readable PEM file")
	}

	opts := []ldap.DialOpt{ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout})}
	if cfg.UseLDAPS {
		opts = append(opts, ldap.DialWithTLSConfig(tlsCfg))
	}

	log.Debug("Connecting to LDAP", zap.String("url", cfg.URL()), zap.Bool("start_tls", cfg.StartTLS))
	conn, err := dialURL(cfg.URL(), opts...)
	if err != nil {
		return nil, gsc_err.NewNetworkError("Could not connect to LDAP server", err,
			fmt.Sprintf("Check that %s is reachable", cfg.URL()))
	}
	if cfg.Timeout > 0 {
		conn.SetTimeout(cfg.Timeout)
	}

	fail := func(e error) (*Session, error) {
		if cerr := conn.Close(); cerr != nil {
			log.Warn("Failed to close LDAP connection", zap.Error(cerr))
		}
		return nil, e
	}

	if cfg.StartTLS && !cfg.UseLDAPS {
		if err := conn.StartTLS(tlsCfg); err != nil {
			return fail(gsc_err.NewNetworkError("Was not able to start encrypted session with LDAP server", err))
		}
	}

	if cfg.Anonymous() {
		if err := conn.UnauthenticatedBind(""); err != nil {
			return fail(gsc_err.NewAuthError("Was not able to make an anonymous bind to ldap", err))
		}
	} else if err := conn.Bind(cfg.BindDN, cfg.Password); err != nil {
		return fail(gsc_err.NewAuthError("LDAP bind failed", err,
			"Verify ldap.bind_dn and ldap.password"))
	}

	log.Info("LDAP session established", zap.String("fqdn", cfg.FQDN), zap.Bool("anonymous", cfg.Anonymous()))
	return &Session{conn: conn, cfg: cfg}, nil
}

// Close releases the connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
