package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"test"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestLoadDefaults(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sinln-members", cfg.MembersTable)
	assert.Equal(t, "sinln-topics", cfg.TopicsTable)
	assert.Equal(t, "sinln-input-emails", cfg.EmailBucket)
	assert.Equal(t, "http://localhost:3000", cfg.AllowedOrigin)
	assert.Equal(t, "default", cfg.DefaultTopicID)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, float64(10), cfg.RateLimitRPS)
	assert.Equal(t, 30, cfg.RateLimitBurst)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	withArgs(t, "-a", ":9090", "-m", "members-prod", "-e", "http://127.0.0.1:4566")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "members-prod", cfg.MembersTable)
	assert.Equal(t, "http://127.0.0.1:4566", cfg.AWSBaseEndpoint)
	// untouched fields keep their defaults
	assert.Equal(t, "sinln-topics", cfg.TopicsTable)
}

func TestJSONOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"http_addr":":7070","members_table":"members-json","rate_limit_burst":5}`,
	), 0o600))

	withArgs(t, "-c", path)

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "members-json", cfg.MembersTable)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	// keys the file omits keep their defaults
	assert.Equal(t, "sinln-topics", cfg.TopicsTable)
}

func TestFlagsOverrideJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"http_addr":":7070"}`), 0o600))

	withArgs(t, "-c", path, "-a", ":9090")

	cfg := LoadConfig()
	assert.Equal(t, ":9090", cfg.HTTPAddr)
}

func TestInvalidJSONFilePanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	withArgs(t, "-c", path)

	assert.Panics(t, func() { LoadConfig() })
}

func TestMissingJSONFilePanics(t *testing.T) {
	withArgs(t, "-c", filepath.Join(t.TempDir(), "no-such.json"))

	assert.Panics(t, func() { LoadConfig() })
}
