package ad

import (
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/testutil"
	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	entries   []*ldap.Entry
	searchErr error
	addErr    error
	delErr    error

	searches []*ldap.SearchRequest
	adds     []*ldap.AddRequest
	dels     []*ldap.DelRequest
}

func (f *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	f.searches = append(f.searches, req)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &ldap.SearchResult{Entries: f.entries}, nil
}

func (f *fakeConn) Add(req *ldap.AddRequest) error {
	f.adds = append(f.adds, req)
	return f.addErr
}

func (f *fakeConn) Del(req *ldap.DelRequest) error {
	f.dels = append(f.dels, req)
	return f.delErr
}

func (f *fakeConn) Close() error { return nil }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DomainControllers = []string{"dc1.gc.local"}
	cfg.Username = "svc-provision"
	return cfg
}

func attr(req *ldap.AddRequest, name string) []string {
	for _, a := range req.Attributes {
		if a.Type == name {
			return a.Vals
		}
	}
	return nil
}

func jane() UserAttributes {
	return UserAttributes{
		Username:  "jdoe",
		LogonName: "jdoe",
		FirstName: "Jane",
		Surname:   "Doe",
		Email:     "a@x.com",
		Container: []string{"GC_Users"},
		Enabled:   true,
		Password:  "s3cret!",
	}
}

func TestAccountControl(t *testing.T) {
	assert.Equal(t, 512, AccountControl(true))
	assert.Equal(t, 514, AccountControl(false))
}

func TestEncodePassword(t *testing.T) {
	got, err := EncodePassword("ab")
	require.NoError(t, err)
	assert.Equal(t, []byte{'"', 0, 'a', 0, 'b', 0, '"', 0}, got)
}

func TestUserDN(t *testing.T) {
	assert.Equal(t, "CN=Jane Doe,OU=GC_Users,DC=gc,DC=local", UserDN("Jane Doe", []string{"GC_Users"}, "DC=gc,DC=local"))
	assert.Equal(t, "CN=Jane Doe,OU=Staff,OU=Genome,DC=gc,DC=local",
		UserDN("Jane Doe", []string{"Genome", "Staff"}, "DC=gc,DC=local"))
	assert.Equal(t, `CN=Doe\, Jane,OU=GC_Users,DC=gc,DC=local`, UserDN("Doe, Jane", []string{"GC_Users"}, "DC=gc,DC=local"))
}

func TestFields(t *testing.T) {
	a := jane()
	fields := a.Fields(false)

	assert.Equal(t, "jdoe", fields["username"])
	assert.Equal(t, "jdoe", fields["logon_name"])
	assert.Equal(t, "Jane", fields["firstname"])
	assert.Equal(t, "Doe", fields["surname"])
	assert.Equal(t, "a@x.com", fields["email"])
	assert.Equal(t, "GC_Users", fields["container"])
	assert.Equal(t, "1", fields["enabled"])
	assert.Equal(t, "0", fields["change_password"])
	assert.Equal(t, "********", fields["password"])

	assert.Equal(t, "s3cret!", a.Fields(true)["password"])
}

func TestNewAddRequest(t *testing.T) {
	c := &Client{conn: &fakeConn{}, cfg: testConfig()}

	req, err := c.NewAddRequest(jane())
	require.NoError(t, err)

	assert.Equal(t, "CN=Jane Doe,OU=GC_Users,DC=gc,DC=local", req.DN)
	assert.Equal(t, []string{"top", "person", "organizationalPerson", "user"}, attr(req, "objectClass"))
	assert.Equal(t, []string{"jdoe"}, attr(req, "sAMAccountName"))
	assert.Equal(t, []string{"jdoe@gc.local"}, attr(req, "userPrincipalName"))
	assert.Equal(t, []string{"Jane"}, attr(req, "givenName"))
	assert.Equal(t, []string{"Doe"}, attr(req, "sn"))
	assert.Equal(t, []string{"a@x.com"}, attr(req, "mail"))
	assert.Equal(t, []string{"Jane Doe"}, attr(req, "displayName"))
	assert.Equal(t, []string{"512"}, attr(req, "userAccountControl"))
	assert.Nil(t, attr(req, "pwdLastSet"))

	pw, err := EncodePassword("s3cret!")
	require.NoError(t, err)
	assert.Equal(t, []string{string(pw)}, attr(req, "unicodePwd"))
}

func TestNewAddRequestOptions(t *testing.T) {
	c := &Client{conn: &fakeConn{}, cfg: testConfig()}

	a := jane()
	a.Enabled = false
	a.ChangePassword = true
	a.DisplayName = "J. Doe"
	a.LogonName = "jane@genome.example"

	req, err := c.NewAddRequest(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"514"}, attr(req, "userAccountControl"))
	assert.Equal(t, []string{"0"}, attr(req, "pwdLastSet"))
	assert.Equal(t, []string{"J. Doe"}, attr(req, "cn"))
	assert.Equal(t, []string{"jane@genome.example"}, attr(req, "userPrincipalName"))
}

func TestNewAddRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UserAttributes, *Config)
		want   string
	}{
		{"missing email", func(a *UserAttributes, _ *Config) { a.Email = "" }, "email"},
		{"missing container", func(a *UserAttributes, _ *Config) { a.Container = nil }, "container"},
		{"missing names", func(a *UserAttributes, _ *Config) { a.FirstName, a.Surname = "", " " }, "firstname, surname"},
		{"password without encryption", func(_ *UserAttributes, c *Config) { c.UseTLS, c.UseSSL = false, false }, "SSL or TLS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, cfg := jane(), testConfig()
			tt.mutate(&a, &cfg)
			c := &Client{conn: &fakeConn{}, cfg: cfg}

			_, err := c.NewAddRequest(a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, gsc_err.IsCategory(err, gsc_err.CategoryMutation))
			assert.Equal(t, 1, gsc_err.GetExitCode(err))
		})
	}
}

func TestUserInfo(t *testing.T) {
	rc := testutil.NewTestContext(t)

	fake := &fakeConn{entries: []*ldap.Entry{
		ldap.NewEntry("CN=Jane Doe,OU=GC_Users,DC=gc,DC=local", map[string][]string{
			"sAMAccountName":     {"jdoe"},
			"displayName":        {"Jane Doe"},
			"mail":               {"a@x.com"},
			"userAccountControl": {"512"},
		}),
	}}
	c := &Client{conn: fake, cfg: testConfig()}

	info, err := c.UserInfo(rc, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", info.SAMAccountName)
	assert.Equal(t, "CN=Jane Doe,OU=GC_Users,DC=gc,DC=local", info.DN)
	assert.Equal(t, "512", info.UserAccountControl)
	require.Len(t, fake.searches, 1)
	assert.Equal(t, "(&(objectCategory=person)(samaccountname=jdoe))", fake.searches[0].Filter)
	assert.Equal(t, "DC=gc,DC=local", fake.searches[0].BaseDN)

	c.conn = &fakeConn{}
	info, err = c.UserInfo(rc, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, info.SAMAccountName)

	c.conn = &fakeConn{searchErr: errors.New("busy")}
	_, err = c.UserInfo(rc, "jdoe")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestUserCreate(t *testing.T) {
	rc := testutil.NewTestContext(t)

	fake := &fakeConn{}
	c := &Client{conn: fake, cfg: testConfig()}
	require.NoError(t, c.UserCreate(rc, jane()))
	require.Len(t, fake.adds, 1)

	fake.addErr = ldap.NewError(ldap.LDAPResultEntryAlreadyExists, errors.New("entry exists"))
	err := c.UserCreate(rc, jane())
	require.Error(t, err)
	assert.True(t, gsc_err.IsCategory(err, gsc_err.CategoryMutation))

	bad := jane()
	bad.Username = ""
	fake.adds = nil
	require.Error(t, c.UserCreate(rc, bad))
	assert.Empty(t, fake.adds)
}

func TestUserCreateWithoutSurname(t *testing.T) {
	rc := testutil.NewTestContext(t)

	fake := &fakeConn{}
	c := &Client{conn: fake, cfg: testConfig()}
	a := jane()
	a.Surname = ""

	err := c.UserCreate(rc, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteAccount)
	assert.Contains(t, err.Error(), "surname")
	assert.Equal(t, 1, gsc_err.GetExitCode(err))
	assert.Empty(t, fake.adds)
}

func TestUserDelete(t *testing.T) {
	rc := testutil.NewTestContext(t)

	fake := &fakeConn{entries: []*ldap.Entry{
		ldap.NewEntry("CN=Jane Doe,OU=GC_Users,DC=gc,DC=local", map[string][]string{"sAMAccountName": {"jdoe"}}),
	}}
	c := &Client{conn: fake, cfg: testConfig()}

	require.NoError(t, c.UserDelete(rc, "jdoe"))
	require.Len(t, fake.dels, 1)
	assert.Equal(t, "CN=Jane Doe,OU=GC_Users,DC=gc,DC=local", fake.dels[0].DN)

	fake.delErr = errors.New("insufficient access rights")
	err := c.UserDelete(rc, "jdoe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient access rights")

	c.conn = &fakeConn{}
	assert.ErrorIs(t, c.UserDelete(rc, "ghost"), ErrUserNotFound)
}

func TestConnect(t *testing.T) {
	origDial, origPick := dialURL, pickDC
	defer func() { dialURL, pickDC = origDial, origPick }()

	var dialed string
	dialURL = func(addr string, opts ...ldap.DialOpt) (*ldap.Conn, error) {
		dialed = addr
		return nil, errors.New("no route to host")
	}
	pickDC = func(n int) int { return n - 1 }

	cfg := testConfig()
	cfg.DomainControllers = []string{"dc1.gc.local", "dc2.gc.local"}
	_, err := Connect(testutil.NewTestContext(t), cfg)
	require.Error(t, err)
	assert.Equal(t, "ldap://dc2.gc.local:389", dialed)
	assert.True(t, gsc_err.IsCategory(err, gsc_err.CategoryNetwork))

	cfg.UseSSL = true
	_, _ = Connect(testutil.NewTestContext(t), cfg)
	assert.Equal(t, "ldaps://dc2.gc.local:636", dialed)

	cfg.DomainControllers = nil
	_, err = Connect(testutil.NewTestContext(t), cfg)
	assert.True(t, gsc_err.IsCategory(err, gsc_err.CategoryValidation))
}

func TestPrincipal(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "svc-provision@gc.local", cfg.Principal())
	cfg.Username = "admin@other.local"
	assert.Equal(t, "admin@other.local", cfg.Principal())
}
