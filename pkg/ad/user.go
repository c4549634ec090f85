// pkg/ad/user.go

package ad

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/go-ldap/ldap/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

var infoAttributes = []string{"samaccountname", "distinguishedName", "displayName", "mail", "userAccountControl"}

// AccountControl returns the userAccountControl value for a normal account.
func AccountControl(enabled bool) int {
	uac := NormalAccount
	if !enabled {
		uac |= AccountDisable
	}
	return uac
}

// EncodePassword produces a unicodePwd value: the quoted password in UTF-16LE.
func EncodePassword(password string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	out, err := enc.String(`"` + password + `"`)
	if err != nil {
		return nil, fmt.Errorf("encode unicodePwd: %w", err)
	}
	return []byte(out), nil
}

func userFilter(username string) string {
	return fmt.Sprintf("(&(objectCategory=person)(samaccountname=%s))", ldap.EscapeFilter(username))
}

// UserInfo looks an account up by sAMAccountName.
func (c *Client) UserInfo(rc *gsc_io.RuntimeContext, username string) (*UserInfo, error) {
	log := otelzap.Ctx(rc.Ctx)

	req := ldap.NewSearchRequest(
		c.cfg.BaseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		userFilter(username), infoAttributes, nil,
	)
	res, err := c.conn.Search(req)
	if err != nil {
		return nil, gsc_err.NewNetworkError("Active Directory search failed", err)
	}
	if len(res.Entries) == 0 {
		log.Debug("No AD account", zap.String("user", username))
		return &UserInfo{}, ErrUserNotFound
	}

	e := res.Entries[0]
	info := &UserInfo{
		SAMAccountName:     e.GetEqualFoldAttributeValue("samaccountname"),
		DN:                 e.DN,
		DisplayName:        e.GetEqualFoldAttributeValue("displayName"),
		Mail:               e.GetEqualFoldAttributeValue("mail"),
		UserAccountControl: e.GetEqualFoldAttributeValue("userAccountControl"),
	}
	if info.DN == "" {
		info.DN = e.GetEqualFoldAttributeValue("distinguishedName")
	}
	return info, nil
}

// UserDN builds the distinguished name a new account is created at.
// Containers are listed outermost first and appear innermost first in the DN.
func UserDN(cn string, containers []string, baseDN string) string {
	rdns := []string{"CN=" + ldap.EscapeDN(cn)}
	reversed := slices.Clone(containers)
	slices.Reverse(reversed)
	for _, ou := range reversed {
		rdns = append(rdns, "OU="+ldap.EscapeDN(ou))
	}
	rdns = append(rdns, baseDN)
	return strings.Join(rdns, ",")
}

var (
	// ErrIncompleteAccount means a compulsory account attribute is empty.
	ErrIncompleteAccount = errors.New("incomplete account attributes")
	// ErrInsecurePassword means a password would be sent over an unencrypted connection.
	ErrInsecurePassword = errors.New("password requires an encrypted connection")
)

// validateCreate enforces the fields AD needs for a usable account.
func (c *Client) validateCreate(a UserAttributes) error {
	var missing []string
	for name, v := range map[string]string{
		"username":  a.Username,
		"firstname": a.FirstName,
		"surname":   a.Surname,
		"email":     a.Email,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(a.Container) == 0 {
		missing = append(missing, "container")
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return gsc_err.NewMutationError("missing compulsory account fields: "+strings.Join(missing, ", "), ErrIncompleteAccount)
	}
	if a.Password != "" && !c.cfg.Secure() {
		return gsc_err.NewMutationError("setting a password requires an SSL or TLS connection (enable ad.use_ssl or ad.use_tls)",
			ErrInsecurePassword)
	}
	return nil
}

// NewAddRequest maps the attribute set onto an AD user entry.
func (c *Client) NewAddRequest(a UserAttributes) (*ldap.AddRequest, error) {
	if err := c.validateCreate(a); err != nil {
		return nil, err
	}

	display := a.DisplayName
	if display == "" {
		display = a.FirstName + " " + a.Surname
	}
	logon := a.LogonName
	if logon == "" {
		logon = a.Username
	}
	if !strings.Contains(logon, "@") {
		logon += c.cfg.AccountSuffix
	}

	req := ldap.NewAddRequest(UserDN(display, a.Container, c.cfg.BaseDN), nil)
	req.Attribute("objectClass", []string{"top", "person", "organizationalPerson", "user"})
	req.Attribute("cn", []string{display})
	req.Attribute("sAMAccountName", []string{a.Username})
	req.Attribute("userPrincipalName", []string{logon})
	req.Attribute("givenName", []string{a.FirstName})
	req.Attribute("sn", []string{a.Surname})
	req.Attribute("mail", []string{a.Email})
	req.Attribute("displayName", []string{display})
	req.Attribute("userAccountControl", []string{strconv.Itoa(AccountControl(a.Enabled))})

	if a.Password != "" {
		pw, err := EncodePassword(a.Password)
		if err != nil {
			return nil, gsc_err.NewInternalError("could not encode password", err)
		}
		req.Attribute("unicodePwd", []string{string(pw)})
	}
	if a.ChangePassword {
		req.Attribute("pwdLastSet", []string{"0"})
	}
	return req, nil
}

// UserCreate adds the account.
func (c *Client) UserCreate(rc *gsc_io.RuntimeContext, a UserAttributes) error {
	log := otelzap.Ctx(rc.Ctx)

	req, err := c.NewAddRequest(a)
	if err != nil {
		return err
	}

	log.Info("Adding AD account", zap.String("dn", req.DN), zap.Bool("enabled", a.Enabled))
	if err := c.conn.Add(req); err != nil {
		return gsc_err.NewMutationError("AD add request failed", err)
	}
	return nil
}

// UserDelete resolves the account DN and deletes the entry.
func (c *Client) UserDelete(rc *gsc_io.RuntimeContext, username string) error {
	log := otelzap.Ctx(rc.Ctx)

	info, err := c.UserInfo(rc, username)
	if err != nil {
		return err
	}

	log.Info("Deleting AD account", zap.String("dn", info.DN))
	if err := c.conn.Del(ldap.NewDelRequest(info.DN, nil)); err != nil {
		return gsc_err.NewMutationError("AD delete request failed", err)
	}
	return nil
}
