// pkg/diskusage/group.go

package diskusage

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
)

var groupPattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// GroupFromQuery decodes the whole query string of /diskusage.html?<group>
// and lower-cases it. Names that could escape the rrd directory are rejected.
func GroupFromQuery(rawQuery string) (string, error) {
	decoded, err := url.PathUnescape(rawQuery)
	if err != nil {
		return "", gsc_err.NewValidationError(fmt.Sprintf("cannot decode group name %q", rawQuery))
	}
	return ValidateGroup(decoded)
}

// ValidateGroup lower-cases group and checks it is a plain file stem.
func ValidateGroup(group string) (string, error) {
	group = strings.ToLower(strings.TrimSpace(group))
	switch {
	case group == "":
		return "", gsc_err.NewValidationError("no group name given",
			"Append the group to the page address, e.g. diskusage.html?genome")
	case !groupPattern.MatchString(group), strings.Contains(group, ".."):
		return "", gsc_err.NewValidationError(fmt.Sprintf("invalid group name %q", group),
			"Group names may only contain letters, digits, '.', '_' and '-'")
	}
	return group, nil
}

// ResourcePath is the location of a group's archive relative to the page.
func ResourcePath(group string) string {
	return "rrd/" + group + ".rrd"
}

// AlertMessage is shown when the fetched file does not decode.
func AlertMessage(group string) string {
	return fmt.Sprintf("File %s is not a valid RRD archive!", ResourcePath(group))
}

// FetchFailedMessage is shown when the file cannot be retrieved at all.
func FetchFailedMessage(group string, err error) string {
	return fmt.Sprintf("Failed loading %s\n%v", ResourcePath(group), err)
}
