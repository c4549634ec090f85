// pkg/ad/types.go

package ad

import (
	"errors"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
)

// userAccountControl flags
const (
	AccountDisable = 0x0002
	NormalAccount  = 0x0200
)

const (
	BindSimple = "simple"
	BindNTLM   = "ntlm"
)

// ErrUserNotFound is returned by UserInfo when no account has the sAMAccountName.
var ErrUserNotFound = errors.New("account not found in Active Directory")

// Config describes the Active Directory domain receiving provisioned accounts.
type Config struct {
	DomainControllers  []string      `mapstructure:"domain_controllers" yaml:"domain_controllers" validate:"required,min=1,dive,required"`
	Port               int           `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
	BaseDN             string        `mapstructure:"base_dn" yaml:"base_dn" validate:"required"`
	AccountSuffix      string        `mapstructure:"account_suffix" yaml:"account_suffix"`
	Username           string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password           string        `mapstructure:"password" yaml:"password"`
	PasswordVaultPath  string        `mapstructure:"password_vault_path" yaml:"password_vault_path"`
	UseSSL             bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	UseTLS             bool          `mapstructure:"use_tls" yaml:"use_tls"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	CACert             string        `mapstructure:"ca_cert" yaml:"ca_cert"`
	BindMethod         string        `mapstructure:"bind_method" yaml:"bind_method" validate:"omitempty,oneof=simple ntlm"`
	Domain             string        `mapstructure:"domain" yaml:"domain" validate:"required_if=BindMethod ntlm"`
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		BaseDN:        shared.DefaultADBaseDN,
		AccountSuffix: shared.DefaultADSuffix,
		UseTLS:        true,
		BindMethod:    BindSimple,
		Timeout:       10 * time.Second,
	}
}

// port falls back to 636 for ldaps and 389 otherwise.
func (c Config) port() int {
	switch {
	case c.Port != 0:
		return c.Port
	case c.UseSSL:
		return 636
	default:
		return 389
	}
}

// Secure reports whether the connection is encrypted, which AD requires before
// it accepts a unicodePwd.
func (c Config) Secure() bool {
	return c.UseSSL || c.UseTLS
}

// Principal is the simple-bind identity.
func (c Config) Principal() string {
	if strings.Contains(c.Username, "@") || strings.Contains(c.Username, "=") {
		return c.Username
	}
	return c.Username + c.AccountSuffix
}

// UserAttributes is the account attribute set handed to UserCreate.
type UserAttributes struct {
	Username       string
	LogonName      string
	FirstName      string
	Surname        string
	Email          string
	Container      []string
	ChangePassword bool
	Enabled        bool
	Password       string
	DisplayName    string
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Fields renders the attribute set under its account field names.
// The password is masked unless showPassword is set.
func (a UserAttributes) Fields(showPassword bool) map[string]string {
	pw := ""
	if a.Password != "" {
		pw = "********"
		if showPassword {
			pw = a.Password
		}
	}
	return map[string]string{
		"username":        a.Username,
		"logon_name":      a.LogonName,
		"firstname":       a.FirstName,
		"surname":         a.Surname,
		"email":           a.Email,
		"container":       strings.Join(a.Container, ","),
		"change_password": flag(a.ChangePassword),
		"enabled":         flag(a.Enabled),
		"password":        pw,
	}
}

// UserInfo is what UserInfo returns about an existing account.
type UserInfo struct {
	SAMAccountName     string `yaml:"samaccountname"`
	DN                 string `yaml:"dn"`
	DisplayName        string `yaml:"display_name"`
	Mail               string `yaml:"mail"`
	UserAccountControl string `yaml:"user_account_control"`
}
