package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandai/challonge/src/infra/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "syncd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLWithEnvOverrides(t *testing.T) {
	path := writeFile(t, `
challonge:
  username: organizer
  api_key: from-file
  timeout: 10s
syncd:
  refresh_interval: 5m
  tournaments: ["42", "league-finals"]
r2:
  account_id: acc
  bucket: vods
`)
	t.Setenv("CHALLONGE_KEY", "from-env")
	t.Setenv("SYNCD_HTTP_ADDR", ":9090")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "organizer", cfg.Challonge.Username)
	assert.Equal(t, "from-env", cfg.Challonge.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Challonge.Timeout)
	assert.Equal(t, ":9090", cfg.Syncd.HTTPAddress)
	assert.Equal(t, 5*time.Minute, cfg.Syncd.RefreshInterval)
	assert.Equal(t, []string{"42", "league-finals"}, cfg.Syncd.Tournaments)
	assert.True(t, cfg.R2.Enabled())
	assert.Equal(t, "vods", cfg.R2.Bucket)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("CHALLONGE_USER", "organizer")
	t.Setenv("CHALLONGE_KEY", "secret")
	t.Setenv("SYNCD_TOURNAMENTS", " 1, 2 ,,3")
	t.Setenv("SYNCD_REFRESH_INTERVAL", "30s")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, cfg.Syncd.Tournaments)
	assert.Equal(t, 30*time.Second, cfg.Syncd.RefreshInterval)
	assert.Equal(t, ":8080", cfg.Syncd.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Challonge.Timeout)
	assert.False(t, cfg.R2.Enabled())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		path func(t *testing.T) string
	}{
		{
			name: "missing credentials",
			env:  map[string]string{"CHALLONGE_USER": "organizer"},
		},
		{
			name: "bad interval",
			env:  map[string]string{"CHALLONGE_USER": "u", "CHALLONGE_KEY": "k", "SYNCD_REFRESH_INTERVAL": "soon"},
		},
		{
			name: "negative interval",
			env:  map[string]string{"CHALLONGE_USER": "u", "CHALLONGE_KEY": "k", "SYNCD_REFRESH_INTERVAL": "-1s"},
		},
		{
			name: "missing file",
			env:  map[string]string{"CHALLONGE_USER": "u", "CHALLONGE_KEY": "k"},
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
		},
		{
			name: "malformed file",
			env:  map[string]string{"CHALLONGE_USER": "u", "CHALLONGE_KEY": "k"},
			path: func(t *testing.T) string { return writeFile(t, "syncd: [unterminated") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"CHALLONGE_USER", "CHALLONGE_KEY", "SYNCD_REFRESH_INTERVAL"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.path != nil {
				path = tt.path(t)
			}
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}
