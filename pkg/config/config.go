// pkg/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ad"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/diskusage"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ldap"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/provision"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/vault"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ProvisionConfig holds the settings applied to new AD accounts.
type ProvisionConfig struct {
	provision.Defaults `mapstructure:",squash" yaml:",inline"`
	PasswordVaultPath  string `mapstructure:"password_vault_path" yaml:"password_vault_path"`
}

// DiskUsageConfig configures the widget server and the read command.
type DiskUsageConfig struct {
	Listen  string                   `mapstructure:"listen" yaml:"listen" validate:"required,hostname_port"`
	BaseURL string                   `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	RRDDir  string                   `mapstructure:"rrd_dir" yaml:"rrd_dir"`
	Limits  diskusage.HandlerOptions `mapstructure:"limits" yaml:"limits"`
}

// Config is the effective gscadmin configuration.
type Config struct {
	LDAP      ldap.Config       `mapstructure:"ldap" yaml:"ldap"`
	AD        ad.Config         `mapstructure:"ad" yaml:"ad"`
	Provision ProvisionConfig   `mapstructure:"provision" yaml:"provision"`
	Vault     vault.Config      `mapstructure:"vault" yaml:"vault"`
	DiskUsage DiskUsageConfig   `mapstructure:"diskusage" yaml:"diskusage"`
	HTTP      httpclient.Config `mapstructure:"http" yaml:"http"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

// ConfigFlag is the persistent flag naming an explicit config file.
const ConfigFlag = "config"

// SetDefaults registers every key so environment overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	l := ldap.DefaultConfig()
	v.SetDefault("ldap.fqdn", l.FQDN)
	v.SetDefault("ldap.port", l.Port)
	v.SetDefault("ldap.start_tls", l.StartTLS)
	v.SetDefault("ldap.use_ldaps", l.UseLDAPS)
	v.SetDefault("ldap.insecure_skip_verify", false)
	v.SetDefault("ldap.ca_cert", "")
	v.SetDefault("ldap.base_dn", l.BaseDN)
	v.SetDefault("ldap.bind_dn", "")
	v.SetDefault("ldap.password", "")
	v.SetDefault("ldap.timeout", l.Timeout)

	a := ad.DefaultConfig()
	v.SetDefault("ad.domain_controllers", []string{})
	v.SetDefault("ad.port", 0)
	v.SetDefault("ad.base_dn", a.BaseDN)
	v.SetDefault("ad.account_suffix", a.AccountSuffix)
	v.SetDefault("ad.username", "")
	v.SetDefault("ad.password", "")
	v.SetDefault("ad.password_vault_path", "")
	v.SetDefault("ad.use_ssl", a.UseSSL)
	v.SetDefault("ad.use_tls", a.UseTLS)
	v.SetDefault("ad.insecure_skip_verify", false)
	v.SetDefault("ad.ca_cert", "")
	v.SetDefault("ad.bind_method", a.BindMethod)
	v.SetDefault("ad.domain", "")
	v.SetDefault("ad.timeout", a.Timeout)

	v.SetDefault("provision.container", provision.DefaultDefaults().Container)
	v.SetDefault("provision.password", "")
	v.SetDefault("provision.password_vault_path", "")

	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.mount", shared.DefaultVaultMount)
	v.SetDefault("vault.ca_cert", "")

	v.SetDefault("diskusage.listen", shared.DefaultListenAddress)
	v.SetDefault("diskusage.base_url", "")
	v.SetDefault("diskusage.rrd_dir", shared.DefaultRRDDir)
	v.SetDefault("diskusage.limits.rate_per_second", 20.0)
	v.SetDefault("diskusage.limits.burst", 40)

	h := httpclient.DefaultConfig()
	v.SetDefault("http.timeout", h.Timeout)
	v.SetDefault("http.user_agent", h.UserAgent)
	v.SetDefault("http.ca_cert", "")
	v.SetDefault("http.insecure_skip_verify", false)
}

// SearchPaths are the directories searched for gscadmin.yaml when --config is not given.
func SearchPaths() []string {
	paths := []string{shared.GscConfigDir}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+shared.GscID))
	}
	return append(paths, ".")
}

// Load reads .env, the config file, GSCADMIN_* variables and the flags in fs,
// in increasing order of precedence.
func Load(fs *pflag.FlagSet, cfgFile string) (*Config, error) {
	log := zap.L()

	if err := godotenv.Load(shared.GscEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Failed to load .env file", zap.Error(err))
	}

	v := viper.New()
	SetDefaults(v)
	cli.SetViperEnvPrefix(v, shared.GscEnvPrefix)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(shared.GscID)
		v.SetConfigType("yaml")
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, gsc_err.NewValidationError(fmt.Sprintf("cannot read config file: %v", err),
				"Check the YAML syntax of the file passed with --config")
		}
		log.Debug("No config file found, using defaults and environment")
	}

	if fs != nil {
		if err := cli.BindFlagsToViper(fs, v); err != nil {
			return nil, gsc_err.NewInternalError("failed to bind flags", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, gsc_err.NewValidationError(fmt.Sprintf("invalid configuration: %v", err))
	}
	cfg.File = v.ConfigFileUsed()

	log.Debug("Configuration loaded", zap.String("file", cfg.File))
	return &cfg, nil
}

// FromCommand loads the configuration with cmd's flags layered on top.
func FromCommand(cmd *cobra.Command) (*Config, error) {
	return Load(cmd.Flags(), cli.GetStringOrEmpty(cmd, ConfigFlag))
}
