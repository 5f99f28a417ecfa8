package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filekeep/client"
)

func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile, profile, endpoint, timeout = "", "", "", 0
	t.Cleanup(func() {
		cfgFile, profile, endpoint, timeout = "", "", "", 0
	})
	t.Setenv("FILEKEEP_ENDPOINT", "")
	t.Setenv("FILEKEEP_TIMEOUT", "")
	t.Setenv("FILEKEEP_PROFILE", "")
	t.Setenv("FILEKEEP_CONFIG", "")
}

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cf := &client.ConfigFile{Profiles: []client.Profile{
		{Name: "local", Endpoint: "http://localhost:8080", Default: true},
		{Name: "prod", Endpoint: "https://files.example.com", Timeout: time.Minute},
	}}
	require.NoError(t, cf.Save(path))
	return path
}

func TestBuildConfig(t *testing.T) {
	t.Run("no config file", func(t *testing.T) {
		resetFlags(t)
		t.Setenv("FILEKEEP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, &client.Config{}, cfg)
	})

	t.Run("default profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
	})

	t.Run("named profile from env", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		t.Setenv("FILEKEEP_PROFILE", "prod")

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com", cfg.Endpoint)
		assert.Equal(t, time.Minute, cfg.Timeout)
	})

	t.Run("flags override env and profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		t.Setenv("FILEKEEP_ENDPOINT", "http://env:1")
		endpoint = "http://flag:2"
		timeout = time.Second

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://flag:2", cfg.Endpoint)
		assert.Equal(t, time.Second, cfg.Timeout)
	})

	t.Run("unknown profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		profile = "staging"

		_, err := buildConfig()
		assert.ErrorIs(t, err, client.ErrProfileNotFound)
	})

	t.Run("explicit missing config file", func(t *testing.T) {
		resetFlags(t)
		cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := buildConfig()
		assert.Error(t, err)
	})
}

func TestTestServerConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	assert.NoError(t, testServerConnection(t.Context(), srv.URL+"/"))

	bad := httptest.NewServer(http.NotFoundHandler())
	defer bad.Close()
	assert.ErrorContains(t, testServerConnection(t.Context(), bad.URL), "health check returned")
}

func TestValidateEndpoint(t *testing.T) {
	assert.NoError(t, validateEndpoint("https://files.example.com"))
	assert.Error(t, validateEndpoint(""))
	assert.Error(t, validateEndpoint("ftp://files.example.com"))
}
