package vault

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const kvResponse = `{
  "request_id": "6a8f4c1e",
  "lease_id": "",
  "renewable": false,
  "lease_duration": 0,
  "data": {
    "data": {"password": "Sup3r-s3cret", "port": 636},
    "metadata": {
      "created_time": "2025-01-01T00:00:00.000000Z",
      "custom_metadata": null,
      "deletion_time": "",
      "destroyed": false,
      "version": 3
    }
  }
}`

func newFakeVault(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))
		switch r.URL.Path {
		case "/v1/secret/data/gscadmin/ad":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(kvResponse))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testContext(t *testing.T) *gsc_io.RuntimeContext {
	return &gsc_io.RuntimeContext{Ctx: context.Background(), Log: zaptest.NewLogger(t), Attributes: map[string]string{}}
}

func TestReadField(t *testing.T) {
	srv := newFakeVault(t)
	t.Setenv("VAULT_TOKEN", "")
	rc := testContext(t)
	cfg := Config{Address: srv.URL, Token: "test-token"}

	client, err := NewClient(rc, cfg)
	require.NoError(t, err)

	t.Run("string field", func(t *testing.T) {
		got, err := ReadField(rc, client, cfg, "gscadmin/ad", "password")
		require.NoError(t, err)
		assert.Equal(t, "Sup3r-s3cret", got)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := ReadField(rc, client, cfg, "gscadmin/ad", "username")
		assert.True(t, errors.Is(err, ErrFieldMissing))
	})

	t.Run("non string field", func(t *testing.T) {
		_, err := ReadField(rc, client, cfg, "gscadmin/ad", "port")
		assert.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := ReadField(rc, client, cfg, "gscadmin/nope", "password")
		require.Error(t, err)
		assert.True(t, errors.Is(err, api.ErrSecretNotFound))
	})
}

func TestConfigMountDefault(t *testing.T) {
	assert.Equal(t, "secret", Config{}.mount())
	assert.Equal(t, "kv", Config{Mount: "kv"}.mount())
}
