// pkg/vault/reader.go

package vault

import (
	"errors"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/hashicorp/vault/api"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var ErrFieldMissing = errors.New("field missing from secret")

// ReadField reads one string field of a KV v2 secret.
func ReadField(rc *gsc_io.RuntimeContext, client *api.Client, cfg Config, path, field string) (string, error) {
	log := otelzap.Ctx(rc.Ctx)

	secret, err := client.KVv2(cfg.mount()).Get(rc.Ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault API read %q: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault API read %q: %w", path, api.ErrSecretNotFound)
	}

	raw, ok := secret.Data[field]
	if !ok {
		return "", fmt.Errorf("%w: %s at %s", ErrFieldMissing, field, path)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %s at %s is %T, not a string", field, path, raw)
	}

	log.Debug("Secret field read from Vault", zap.String("mount", cfg.mount()), zap.String("path", path), zap.String("field", field))
	return value, nil
}
