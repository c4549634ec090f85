/* pkg/gsc_io/yaml.go */

package gsc_io

import (
	"context"
	"fmt"
	"io"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// WriteYAML encodes in as YAML onto w.
func WriteYAML(ctx context.Context, w io.Writer, in interface{}) error {
	logger := otelzap.Ctx(ctx)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		logger.Error("Failed to marshal YAML", zap.Error(err))
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}
	return nil
}
