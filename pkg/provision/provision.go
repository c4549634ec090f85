// pkg/provision/provision.go
//
// Check-then-act synchronisation of one account from the GSC LDAP directory
// into Active Directory. Each run is a single lookup followed by at most one
// mutation; nothing is retried or rolled back.

package provision

import (
	"errors"
	"fmt"
	"io"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ad"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ldap"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ErrSourceUserNotFound means the uid is unknown to the LDAP directory.
var ErrSourceUserNotFound = errors.New("user not found in LDAP")

// Source is the authoritative directory.
type Source interface {
	LookupUser(rc *gsc_io.RuntimeContext, username string) (*ldap.DirectoryUser, error)
}

// Target is the directory accounts are provisioned into.
type Target interface {
	UserInfo(rc *gsc_io.RuntimeContext, username string) (*ad.UserInfo, error)
	UserCreate(rc *gsc_io.RuntimeContext, attrs ad.UserAttributes) error
	UserDelete(rc *gsc_io.RuntimeContext, username string) error
}

// Defaults are the site settings applied to every new account.
type Defaults struct {
	Container []string `mapstructure:"container" yaml:"container" validate:"required,min=1,dive,required"`
	Password  string   `mapstructure:"password" yaml:"password"`
}

func DefaultDefaults() Defaults {
	return Defaults{Container: []string{shared.DefaultADContainer}}
}

// Options control a single run.
type Options struct {
	DryRun bool
	// Out receives the operator-facing progress messages.
	Out io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCreated
	OutcomeExists
	OutcomeDeleted
	OutcomeAbsent
	OutcomePlanned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeExists:
		return "exists"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeAbsent:
		return "absent"
	case OutcomePlanned:
		return "planned"
	default:
		return "none"
	}
}

// BuildAttributes maps an LDAP record onto the AD account attribute set.
func BuildAttributes(user *ldap.DirectoryUser, d Defaults) ad.UserAttributes {
	container := d.Container
	if len(container) == 0 {
		container = DefaultDefaults().Container
	}
	return ad.UserAttributes{
		Username:       user.Username,
		LogonName:      user.Username,
		FirstName:      user.FirstName,
		Surname:        user.LastName,
		Email:          user.Email,
		Container:      append([]string(nil), container...),
		ChangePassword: false,
		Enabled:        true,
		Password:       d.Password,
	}
}

// sameAccount requires the returned sAMAccountName to match username exactly.
// A name that differs only in case is treated as a different account.
func sameAccount(info *ad.UserInfo, username string) bool {
	return info != nil && info.SAMAccountName == username
}

// CreateADUser copies username from src into dst unless dst already has it.
func CreateADUser(rc *gsc_io.RuntimeContext, src Source, dst Target, username string, d Defaults, opts Options) (Outcome, error) {
	log := otelzap.Ctx(rc.Ctx)
	w := opts.out()

	user, err := src.LookupUser(rc, username)
	if errors.Is(err, ldap.ErrUserNotFound) {
		msg := fmt.Sprintf("User %s was not found in LDAP, so I am not adding to AD", username)
		fmt.Fprintln(w, msg)
		return OutcomeNone, gsc_err.NewNotFoundError(msg, ErrSourceUserNotFound)
	}
	if err != nil {
		return OutcomeNone, err
	}
	log.Debug("LDAP record loaded", zap.String("user", username), zap.String("dn", user.DN))

	info, err := dst.UserInfo(rc, username)
	switch {
	case err == nil && sameAccount(info, username):
		fmt.Fprintln(w, "This user already exists in the GC active directory, so I am not creating it.")
		log.Info("AD account already present", zap.String("user", username), zap.String("dn", info.DN))
		return OutcomeExists, nil
	case err != nil && !errors.Is(err, ad.ErrUserNotFound):
		return OutcomeNone, err
	}

	attrs := BuildAttributes(user, d)
	log.Info("Planned AD account", zap.Any("attributes", attrs.Fields(false)))

	if opts.DryRun {
		fmt.Fprintf(w, "Adding %s to GC active directory... skipped (dry run)\n", username)
		return OutcomePlanned, nil
	}

	fmt.Fprintf(w, "Adding %s to GC active directory...", username)
	if err := dst.UserCreate(rc, attrs); err != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Adding user to AD failed")
		return OutcomeNone, err
	}
	fmt.Fprintln(w, "complete.")
	return OutcomeCreated, nil
}

// DeleteADUser removes username from dst when it exists there.
// A failing lookup is reported as a failure, never as an absent account.
func DeleteADUser(rc *gsc_io.RuntimeContext, dst Target, username string, opts Options) (Outcome, error) {
	log := otelzap.Ctx(rc.Ctx)
	w := opts.out()

	info, err := dst.UserInfo(rc, username)
	if err != nil && !errors.Is(err, ad.ErrUserNotFound) {
		return OutcomeNone, err
	}
	if err != nil || !sameAccount(info, username) {
		fmt.Fprintln(w, "This user does not exist in the DSG active directory, so I am not deleting it.")
		log.Info("AD account absent", zap.String("user", username))
		return OutcomeAbsent, nil
	}

	if opts.DryRun {
		fmt.Fprintf(w, "Deleting %s from DSG active directory... skipped (dry run)\n", username)
		log.Info("Planned AD deletion", zap.String("dn", info.DN))
		return OutcomePlanned, nil
	}

	fmt.Fprintf(w, "Deleting %s from DSG active directory...", username)
	if err := dst.UserDelete(rc, username); err != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Deleting user from AD failed: %v\n", err)
		return OutcomeNone, err
	}
	fmt.Fprintln(w, "complete.")
	return OutcomeDeleted, nil
}
