package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadLayersOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tled.toml", `
[server]
bind = "127.0.0.1:9090"

[parser]
strict = true

[catalog]
refresh_hours = 6
cross_check = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Bind)
	assert.True(t, cfg.Parser.Strict)
	assert.Equal(t, 6, cfg.Catalog.RefreshHours)
	assert.False(t, cfg.Catalog.CrossCheck)

	def := Default()
	assert.Equal(t, def.Data.Root, cfg.Data.Root)
	assert.Equal(t, def.Catalog.URL, cfg.Catalog.URL)
	assert.Equal(t, def.Catalog.FetchRetries, cfg.Catalog.FetchRetries)
	assert.Equal(t, def.Logging.Level, cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"empty root":     "[data]\nroot = \"\"\n",
		"bad level":      "[logging]\nlevel = \"loud\"\n",
		"zero refresh":   "[catalog]\nrefresh_hours = 0\n",
		"empty url":      "[catalog]\nurl = \"\"\n",
		"negative limit": "[catalog]\nmax_body_bytes = -1\n",
		"negative retry": "[catalog]\nfetch_retries = -1\n",
		"not toml":       "[catalog\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.toml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeRoundTrip(t *testing.T) {
	b, err := Encode(Default())
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "rt.toml", string(b))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestListProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zulu.toml", "")
	writeFile(t, dir, "alpha.toml", "")
	writeFile(t, dir, "notes.txt", "")

	profiles, err := ListProfiles(dir)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "alpha", profiles[0].Name)
	assert.Equal(t, "zulu", profiles[1].Name)

	none, err := ListProfiles(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
