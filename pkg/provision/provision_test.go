package provision

import (
	"bytes"
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ad"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ldap"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	users map[string]*ldap.DirectoryUser
	err   error
}

func (f *fakeSource) LookupUser(_ *gsc_io.RuntimeContext, username string) (*ldap.DirectoryUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, ldap.ErrUserNotFound
	}
	return u, nil
}

type fakeTarget struct {
	accounts  map[string]*ad.UserInfo
	infoErr   error
	createErr error
	deleteErr error

	created []ad.UserAttributes
	deleted []string
}

func (f *fakeTarget) UserInfo(_ *gsc_io.RuntimeContext, username string) (*ad.UserInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	if info, ok := f.accounts[username]; ok {
		return info, nil
	}
	return &ad.UserInfo{}, ad.ErrUserNotFound
}

func (f *fakeTarget) UserCreate(_ *gsc_io.RuntimeContext, attrs ad.UserAttributes) error {
	f.created = append(f.created, attrs)
	return f.createErr
}

func (f *fakeTarget) UserDelete(_ *gsc_io.RuntimeContext, username string) error {
	f.deleted = append(f.deleted, username)
	return f.deleteErr
}

func janeSource() *fakeSource {
	return &fakeSource{users: map[string]*ldap.DirectoryUser{
		"jdoe": {Username: "jdoe", FirstName: "Jane", LastName: "Doe", Email: "a@x.com", DN: "uid=jdoe,ou=People,dc=gsc,dc=wustl,dc=edu"},
	}}
}

func TestBuildAttributes(t *testing.T) {
	user := &ldap.DirectoryUser{Username: "jdoe", FirstName: "Jane", LastName: "Doe", Email: "a@x.com"}
	attrs := BuildAttributes(user, Defaults{Container: []string{"GC_Users"}, Password: "changeme"})

	fields := attrs.Fields(true)
	expected := map[string]string{
		"username":        "jdoe",
		"logon_name":      "jdoe",
		"firstname":       "Jane",
		"surname":         "Doe",
		"email":           "a@x.com",
		"enabled":         "1",
		"change_password": "0",
	}
	for k, v := range expected {
		assert.Equal(t, v, fields[k], k)
	}
	assert.Equal(t, "GC_Users", fields["container"])
	assert.Equal(t, "changeme", fields["password"])
}

func TestBuildAttributesDefaultContainer(t *testing.T) {
	attrs := BuildAttributes(&ldap.DirectoryUser{Username: "jdoe"}, Defaults{})
	assert.Equal(t, []string{"GC_Users"}, attrs.Container)
}

func TestCreateADUser(t *testing.T) {
	t.Run("source user missing", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{}
		outcome, err := CreateADUser(testutil.NewTestContext(t), janeSource(), dst, "ghost", DefaultDefaults(), Options{Out: &out})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceUserNotFound)
		assert.Equal(t, 1, gsc_err.GetExitCode(err))
		assert.Equal(t, OutcomeNone, outcome)
		assert.Empty(t, dst.created)
		assert.Contains(t, out.String(), "User ghost was not found in LDAP, so I am not adding to AD")
	})

	t.Run("already in AD", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{accounts: map[string]*ad.UserInfo{"jdoe": {SAMAccountName: "jdoe"}}}
		outcome, err := CreateADUser(testutil.NewTestContext(t), janeSource(), dst, "jdoe", DefaultDefaults(), Options{Out: &out})

		require.NoError(t, err)
		assert.Equal(t, 0, gsc_err.GetExitCode(err))
		assert.Equal(t, OutcomeExists, outcome)
		assert.Empty(t, dst.created)
		assert.Contains(t, out.String(), "already exists in the GC active directory")
	})

	t.Run("case mismatch is not an existing account", func(t *testing.T) {
		dst := &fakeTarget{accounts: map[string]*ad.UserInfo{"jdoe": {SAMAccountName: "JDoe"}}}
		outcome, err := CreateADUser(testutil.NewTestContext(t), janeSource(), dst, "jdoe",
			Defaults{Container: []string{"GC_Users"}, Password: "pw"}, Options{})

		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, outcome)
		assert.Len(t, dst.created, 1)
	})

	t.Run("created", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{}
		outcome, err := CreateADUser(testutil.NewTestContext(t), janeSource(), dst, "jdoe",
			Defaults{Container: []string{"GC_Users"}, Password: "pw"}, Options{Out: &out})

		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, outcome)
		require.Len(t, dst.created, 1)
		assert.Equal(t, "Jane", dst.created[0].FirstName)
		assert.True(t, dst.created[0].Enabled)
		assert.Equal(t, "Adding jdoe to GC active directory...complete.\n", out.String())
	})

	t.Run("create fails", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{createErr: gsc_err.NewMutationError("AD add request failed", errors.New("constraint violation"))}
		_, err := CreateADUser(testutil.NewTestContext(t), janeSource(), dst, "jdoe", DefaultDefaults(), Options{Out: &out})

		require.Error(t, err)
		assert.Equal(t, 1, gsc_err.GetExitCode(err))
		assert.Contains(t, out.String(), "Adding user to AD failed")
	})

	t.Run("AD lookup fails", func(t *testing.T) {
		dst := &fakeTarget{infoErr: gsc_err.NewNetworkError("Active Directory search failed", errors.New("timeout"))}
		_, err := CreateADUser(testutil.NewTestContext(t), janeSource(), dst, "jdoe", DefaultDefaults(), Options{})

		require.Error(t, err)
		assert.Empty(t, dst.created)
		assert.Equal(t, 1, gsc_err.GetExitCode(err))
	})

	t.Run("LDAP unreachable", func(t *testing.T) {
		src := &fakeSource{err: gsc_err.NewNetworkError("Could not connect to LDAP server", errors.New("refused"))}
		dst := &fakeTarget{}
		_, err := CreateADUser(testutil.NewTestContext(t), src, dst, "jdoe", DefaultDefaults(), Options{})

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSourceUserNotFound)
		assert.Empty(t, dst.created)
	})

	t.Run("dry run", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{}
		outcome, err := CreateADUser(testutil.NewTestContext(t), janeSource(), dst, "jdoe", DefaultDefaults(), Options{DryRun: true, Out: &out})

		require.NoError(t, err)
		assert.Equal(t, OutcomePlanned, outcome)
		assert.Empty(t, dst.created)
		assert.Contains(t, out.String(), "dry run")
	})
}

func TestDeleteADUser(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{}
		outcome, err := DeleteADUser(testutil.NewTestContext(t), dst, "ghost", Options{Out: &out})

		require.NoError(t, err)
		assert.Equal(t, 0, gsc_err.GetExitCode(err))
		assert.Equal(t, OutcomeAbsent, outcome)
		assert.Empty(t, dst.deleted)
		assert.Contains(t, out.String(), "This user does not exist in the DSG active directory, so I am not deleting it.")
	})

	t.Run("returned name differs", func(t *testing.T) {
		dst := &fakeTarget{accounts: map[string]*ad.UserInfo{"jdoe": {SAMAccountName: "jdoe2"}}}
		outcome, err := DeleteADUser(testutil.NewTestContext(t), dst, "jdoe", Options{})

		require.NoError(t, err)
		assert.Equal(t, OutcomeAbsent, outcome)
		assert.Empty(t, dst.deleted)
	})

	t.Run("case mismatch is not deleted", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{accounts: map[string]*ad.UserInfo{"JDOE": {SAMAccountName: "jdoe"}}}
		outcome, err := DeleteADUser(testutil.NewTestContext(t), dst, "JDOE", Options{Out: &out})

		require.NoError(t, err)
		assert.Equal(t, 0, gsc_err.GetExitCode(err))
		assert.Equal(t, OutcomeAbsent, outcome)
		assert.Empty(t, dst.deleted)
		assert.Contains(t, out.String(), "This user does not exist in the DSG active directory, so I am not deleting it.")
	})

	t.Run("deleted", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{accounts: map[string]*ad.UserInfo{"jdoe": {SAMAccountName: "jdoe"}}}
		outcome, err := DeleteADUser(testutil.NewTestContext(t), dst, "jdoe", Options{Out: &out})

		require.NoError(t, err)
		assert.Equal(t, OutcomeDeleted, outcome)
		assert.Equal(t, []string{"jdoe"}, dst.deleted)
		assert.Equal(t, "Deleting jdoe from DSG active directory...complete.\n", out.String())
	})

	t.Run("delete fails", func(t *testing.T) {
		var out bytes.Buffer
		dst := &fakeTarget{
			accounts:  map[string]*ad.UserInfo{"jdoe": {SAMAccountName: "jdoe"}},
			deleteErr: gsc_err.NewMutationError("AD delete request failed", errors.New("insufficient access rights")),
		}
		_, err := DeleteADUser(testutil.NewTestContext(t), dst, "jdoe", Options{Out: &out})

		require.Error(t, err)
		assert.Equal(t, 1, gsc_err.GetExitCode(err))
		assert.Contains(t, err.Error(), "insufficient access rights")
		assert.Contains(t, out.String(), "Deleting user from AD failed")
		assert.Contains(t, out.String(), "insufficient access rights")
	})

	t.Run("lookup failure is not absence", func(t *testing.T) {
		dst := &fakeTarget{infoErr: gsc_err.NewNetworkError("Active Directory search failed", errors.New("timeout"))}
		outcome, err := DeleteADUser(testutil.NewTestContext(t), dst, "jdoe", Options{})

		require.Error(t, err)
		assert.Equal(t, OutcomeNone, outcome)
		assert.Equal(t, 1, gsc_err.GetExitCode(err))
		assert.Empty(t, dst.deleted)
	})

	t.Run("dry run", func(t *testing.T) {
		dst := &fakeTarget{accounts: map[string]*ad.UserInfo{"jdoe": {SAMAccountName: "jdoe"}}}
		outcome, err := DeleteADUser(testutil.NewTestContext(t), dst, "jdoe", Options{DryRun: true})

		require.NoError(t, err)
		assert.Equal(t, OutcomePlanned, outcome)
		assert.Empty(t, dst.deleted)
	})
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "created", OutcomeCreated.String())
	assert.Equal(t, "absent", OutcomeAbsent.String())
	assert.Equal(t, "none", Outcome(42).String())
}
