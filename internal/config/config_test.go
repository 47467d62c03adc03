package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientConfig_SaveLoad(t *testing.T) {
	t.Setenv("IRONBOARD_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.False(t, cfg.LoggedIn())

	cfg.ServerURL = "https://board.example.com"
	cfg.Token = "secret"
	cfg.UserID = "u1"
	cfg.Email = "me@example.com"
	cfg.CurrentProject = "p1"
	require.NoError(t, cfg.Save())

	info, err := os.Stat(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://board.example.com", loaded.ServerURL)
	assert.Equal(t, "secret", loaded.Token)
	assert.Equal(t, "p1", loaded.CurrentProject)
	assert.True(t, loaded.LoggedIn())

	loaded.ClearSession()
	assert.False(t, loaded.LoggedIn())
	assert.Empty(t, loaded.CurrentProject)
}

func TestClientConfig_TrailingSlash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: http://host:9000/\n"), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://host:9000", cfg.ServerURL)
}

func TestLoadServer_Defaults(t *testing.T) {
	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL)
	assert.False(t, cfg.Auth.ExposeMagicTokens)
}

func TestLoadServer_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	yml := `
listen: ":9090"
database:
  driver: sqlite
  url: /var/lib/ironboard/board.db
auth:
  session_ttl: 24h
  magic_link_ttl: 5m
  expose_magic_tokens: true
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0600))

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Auth.MagicLinkTTL)
	assert.True(t, cfg.Auth.ExposeMagicTokens)
	assert.Equal(t, "json", cfg.Log.Format)

	t.Setenv("PORT", "7000")
	t.Setenv("DATABASE_URL", "postgres://db/ironboard")
	t.Setenv("IRONBOARD_DB_DRIVER", "postgres")

	cfg, err = LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://db/ironboard", cfg.Database.URL)
}

func TestLoadServer_Invalid(t *testing.T) {
	t.Setenv("IRONBOARD_DB_DRIVER", "mysql")
	_, err := LoadServer("")
	assert.Error(t, err)
}
