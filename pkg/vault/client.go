// pkg/vault/client.go

package vault

import (
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
	"github.com/hashicorp/vault/api"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Config points at the Vault server holding provisioning secrets.
// Empty fields fall back to the standard VAULT_* environment variables.
type Config struct {
	Address string `mapstructure:"address" yaml:"address"`
	Token   string `mapstructure:"token" yaml:"token"`
	Mount   string `mapstructure:"mount" yaml:"mount"`
	CACert  string `mapstructure:"ca_cert" yaml:"ca_cert"`
}

func (c Config) mount() string {
	if c.Mount == "" {
		return shared.DefaultVaultMount
	}
	return c.Mount
}

// NewClient creates a Vault API client from cfg and the VAULT_* environment.
func NewClient(rc *gsc_io.RuntimeContext, cfg Config) (*api.Client, error) {
	log := otelzap.Ctx(rc.Ctx)

	vcfg := api.DefaultConfig()
	if err := vcfg.ReadEnvironment(); err != nil {
		log.Warn("Unable to read Vault env vars", zap.Error(err))
	}
	if cfg.Address != "" {
		vcfg.Address = cfg.Address
	}
	if cfg.CACert != "" {
		if err := vcfg.ConfigureTLS(&api.TLSConfig{CACert: cfg.CACert}); err != nil {
			return nil, fmt.Errorf("TLS setup failed: %w", err)
		}
	}

	client, err := api.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("vault client creation failed: %w", err)
	}

	switch {
	case cfg.Token != "":
		client.SetToken(cfg.Token)
	case os.Getenv("VAULT_TOKEN") != "":
		client.SetToken(os.Getenv("VAULT_TOKEN"))
	}

	log.Debug("Vault client created", zap.String("addr", vcfg.Address))
	return client, nil
}
