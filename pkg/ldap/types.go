/* pkg/ldap/types.go */

package ldap

import (
	"errors"
	"time"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
)

// ErrUserNotFound is returned when the uid search matches no entry.
var ErrUserNotFound = errors.New("user not found in LDAP")

// Config describes the OpenLDAP server that owns the authoritative user records.
type Config struct {
	FQDN               string        `mapstructure:"fqdn" yaml:"fqdn" validate:"required,hostname_rfc1123|ip"`
	Port               int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	StartTLS           bool          `mapstructure:"start_tls" yaml:"start_tls"`
	UseLDAPS           bool          `mapstructure:"use_ldaps" yaml:"use_ldaps"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	CACert             string        `mapstructure:"ca_cert" yaml:"ca_cert"`
	BaseDN             string        `mapstructure:"base_dn" yaml:"base_dn" validate:"required"`
	BindDN             string        `mapstructure:"bind_dn" yaml:"bind_dn"`
	Password           string        `mapstructure:"password" yaml:"password"`
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the settings the GSC directory has always used:
// StartTLS on port 389 with an anonymous bind.
func DefaultConfig() Config {
	return Config{
		FQDN:     shared.DefaultLDAPHost,
		Port:     389,
		StartTLS: true,
		BaseDN:   shared.DefaultLDAPBaseDN,
		Timeout:  10 * time.Second,
	}
}

// Anonymous reports whether the session binds without credentials.
func (c Config) Anonymous() bool {
	return c.BindDN == ""
}

// DirectoryUser is the subset of a posixAccount copied into Active Directory.
type DirectoryUser struct {
	Username  string `yaml:"username"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	DN        string `yaml:"dn"`
}

var userAttributes = []string{"uid", "mail", "sn", "givenName"}
