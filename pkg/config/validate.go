// pkg/config/validate.go

package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/go-playground/validator/v10"
)

// Section names accepted by Validate.
const (
	SectionLDAP      = "ldap"
	SectionAD        = "ad"
	SectionProvision = "provision"
	SectionDiskUsage = "diskusage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report config keys rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks only the sections a command actually uses.
func (c *Config) Validate(sections ...string) error {
	var problems []string
	for _, s := range sections {
		var target interface{}
		switch s {
		case SectionLDAP:
			target = c.LDAP
		case SectionAD:
			target = c.AD
		case SectionProvision:
			target = c.Provision
		case SectionDiskUsage:
			target = c.DiskUsage
		default:
			return gsc_err.NewInternalError("unknown config section "+s, nil)
		}
		problems = append(problems, describe(s, validate.Struct(target))...)
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return gsc_err.NewValidationError("invalid configuration: "+strings.Join(problems, "; "),
		"Set the listed keys in gscadmin.yaml or as GSCADMIN_<SECTION>_<KEY> environment variables")
}

func describe(section string, err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("%s: %v", section, err)}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s.%s failed %q", section, fe.Field(), fe.Tag()))
	}
	return out
}
