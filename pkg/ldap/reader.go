// pkg/ldap/reader.go

package ldap

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/go-ldap/ldap/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// UserFilter matches exactly one uid.
func UserFilter(username string) string {
	return fmt.Sprintf("(&(uid=%s))", ldap.EscapeFilter(username))
}

// LookupUser fetches the uid entry under BaseDN.
func (s *Session) LookupUser(rc *gsc_io.RuntimeContext, username string) (*DirectoryUser, error) {
	log := otelzap.Ctx(rc.Ctx)

	req := ldap.NewSearchRequest(
		s.cfg.BaseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		UserFilter(username), userAttributes, nil,
	)

	res, err := s.conn.Search(req)
	if err != nil && !(ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) && res != nil && len(res.Entries) > 0) {
		return nil, gsc_err.NewNetworkError("LDAP search failed", err)
	}
	if res == nil || len(res.Entries) == 0 {
		log.Info("No LDAP entry for user", zap.String("user", username), zap.String("base_dn", s.cfg.BaseDN))
		return nil, ErrUserNotFound
	}

	e := res.Entries[0]
	user := &DirectoryUser{
		Username:  e.GetAttributeValue("uid"),
		FirstName: e.GetAttributeValue("givenName"),
		LastName:  e.GetAttributeValue("sn"),
		Email:     e.GetAttributeValue("mail"),
		DN:        e.DN,
	}
	if user.Username == "" {
		user.Username = username
	}

	log.Debug("LDAP entry found", zap.String("dn", user.DN))
	return user, nil
}
