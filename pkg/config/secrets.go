// pkg/config/secrets.go

package config

import (
	"fmt"
	"io"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/vault"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	redacted      = "********"
	passwordField = "password"
)

var (
	readVaultField = func(rc *gsc_io.RuntimeContext, cfg vault.Config, path, field string) (string, error) {
		client, err := vault.NewClient(rc, cfg)
		if err != nil {
			return "", err
		}
		return vault.ReadField(rc, client, cfg, path, field)
	}
	promptSecret = interaction.PromptSecret
	interactive  = interaction.IsInteractive
)

// ResolveADPassword fills AD.Password from, in order: the config/env value,
// the Vault secret at ad.password_vault_path, an interactive prompt.
func (c *Config) ResolveADPassword(rc *gsc_io.RuntimeContext, prompt io.Writer) error {
	log := otelzap.Ctx(rc.Ctx)

	if c.AD.Password != "" {
		log.Debug("AD password taken from configuration")
		return nil
	}

	if c.AD.PasswordVaultPath != "" {
		pw, err := readVaultField(rc, c.Vault, c.AD.PasswordVaultPath, passwordField)
		if err == nil && pw != "" {
			log.Info("AD password read from Vault", zap.String("path", c.AD.PasswordVaultPath))
			c.AD.Password = pw
			return nil
		}
		log.Warn("Could not read AD password from Vault", zap.String("path", c.AD.PasswordVaultPath), zap.Error(err))
	}

	if !interactive() {
		return gsc_err.NewValidationError("no AD bind password available",
			"Set GSCADMIN_AD_PASSWORD",
			"Or store it in Vault and set ad.password_vault_path",
			"Or run the command from a terminal to be prompted")
	}
	pw, err := promptSecret(prompt, fmt.Sprintf("AD password for %s", c.AD.Principal()))
	if err != nil {
		return gsc_err.NewUserCancelledError("AD password prompt")
	}
	c.AD.Password = pw
	return nil
}

// ResolveNewUserPassword fills Provision.Password from Vault when it is not
// configured directly. New accounts are created enabled, which AD refuses
// without a password, so having none is an error.
func (c *Config) ResolveNewUserPassword(rc *gsc_io.RuntimeContext) error {
	log := otelzap.Ctx(rc.Ctx)
	if c.Provision.Password != "" {
		return nil
	}
	if c.Provision.PasswordVaultPath != "" {
		pw, err := readVaultField(rc, c.Vault, c.Provision.PasswordVaultPath, passwordField)
		if err == nil && pw != "" {
			c.Provision.Password = pw
			return nil
		}
		log.Warn("Could not read initial account password from Vault",
			zap.String("path", c.Provision.PasswordVaultPath), zap.Error(err))
	}
	return gsc_err.NewValidationError("no initial password configured for new AD accounts",
		"Set provision.password or GSCADMIN_PROVISION_PASSWORD",
		"Or store it in Vault and set provision.password_vault_path")
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	mask := func(s *string) {
		if *s != "" {
			*s = redacted
		}
	}
	mask(&c.LDAP.Password)
	mask(&c.AD.Password)
	mask(&c.Provision.Password)
	mask(&c.Vault.Token)
	c.AD.DomainControllers = append([]string(nil), c.AD.DomainControllers...)
	c.Provision.Container = append([]string(nil), c.Provision.Container...)
	return c
}
