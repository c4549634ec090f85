package gsc_err

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil prints nothing", nil, ""},
		{"expected is a notice", NewExpectedError(errors.New("exists")), "⚠️  Notice: create: exists\n"},
		{"other is an error", errors.New("refused"), "❌ Error: create: refused\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, "create", tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
