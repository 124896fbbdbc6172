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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, SourceFS, cfg.Content.Source)
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "/product/", cfg.Site.PathPrefix)
	assert.Equal(t, 30, cfg.RateLimit.AuthPerMinute)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9090"
content:
  source: postgres
database:
  url: postgres://localhost/site
cache:
  ttl: 30s
site:
  brand: Acme
  nav:
    - label: Session recording
      url: /product/session-recording
squeak:
  api_host: https://squeak.example.com
  organization_id: org-1
  timeout: 3s
  login_button: Login to post
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, SourcePostgres, cfg.Content.Source)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "org-1", cfg.Squeak.OrganizationID)
	assert.Equal(t, 3*time.Second, cfg.Squeak.Timeout)
	assert.Equal(t, "Login to post", cfg.Squeak.LoginButton)
	assert.Equal(t, "Sign up", cfg.Squeak.SignUpButton)

	opts := cfg.Options()
	assert.Equal(t, "Acme", opts.Brand)
	require.Len(t, opts.Nav, 1)
	assert.Equal(t, "/product/session-recording", opts.Nav[0].URL)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PRODUCTSITE_SITE_BRAND", "Hogs")
	t.Setenv("PRODUCTSITE_CACHE_TTL", "1m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Hogs", cfg.Site.Brand)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "failure: unknown content source", body: "content:\n  source: s3\n"},
		{name: "failure: bad log level", body: "log:\n  level: loud\n"},
		{name: "failure: negative rate limit", body: "ratelimit:\n  auth_per_minute: -1\n"},
		{name: "failure: malformed yaml", body: "http: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
