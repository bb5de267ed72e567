package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJson_Overlay(t *testing.T) {
	path := writeConfig(t, `{"server_endpoint_addr":"10.0.0.1:50051"}`)

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseJson(cfg, []string{"-config", path}))

	assert.Equal(t, "10.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout, "absent field keeps default")
}

func TestParseJson_NanosecondDuration(t *testing.T) {
	path := writeConfig(t, `{"request_timeout": 2000000000}`)

	cfg := &Config{}
	require.NoError(t, parseJson(cfg, []string{"-c", path}))
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestParseJson_NoFile(t *testing.T) {
	cfg := &Config{ServerEndpointAddr: "keep"}
	require.NoError(t, parseJson(cfg, nil))
	assert.Equal(t, "keep", cfg.ServerEndpointAddr)
}

func TestParseJson_Malformed(t *testing.T) {
	path := writeConfig(t, `{"server_endpoint_addr":`)
	require.Error(t, parseJson(&Config{}, []string{"-c", path}))
}
