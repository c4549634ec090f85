// pkg/cli/cli.go

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ViperKeyAnnotation maps a flag onto a nested configuration key.
const ViperKeyAnnotation = "gscadmin_viper_key"

// AddConfigFlag adds a string flag that overrides the configuration key.
func AddConfigFlag(fs *pflag.FlagSet, name, key, def, help string) {
	fs.String(name, def, help)
	annotate(fs, name, key)
}

// AddConfigSliceFlag adds a string slice flag that overrides the configuration key.
func AddConfigSliceFlag(fs *pflag.FlagSet, name, key string, def []string, help string) {
	fs.StringSlice(name, def, help)
	annotate(fs, name, key)
}

func annotate(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, ViperKeyAnnotation, []string{key}); err != nil {
		// Don't panic - the flag still works, it just won't reach the config
		fmt.Fprintf(os.Stderr, "warning: failed to annotate flag %s: %v\n", name, err)
	}
}

// ViperKey returns the configuration key a flag is bound to.
func ViperKey(f *pflag.Flag) string {
	if keys, ok := f.Annotations[ViperKeyAnnotation]; ok && len(keys) > 0 {
		return keys[0]
	}
	return f.Name
}

// BindFlagsToViper binds all flags in fs to a Viper instance.
func BindFlagsToViper(fs *pflag.FlagSet, v *viper.Viper) error {
	var result error
	fs.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(ViperKey(f), f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

// SetViperEnvPrefix lets Viper read PREFIX_SECTION_KEY environment variables.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
}

// GetStringOrEmpty returns the string value or empty string if error.
func GetStringOrEmpty(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return val
}

// GetBool returns the bool flag value, false when the flag is undefined.
func GetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return val
}
