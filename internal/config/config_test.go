package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/asyncgit-go/internal/render"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	orig := searchDirs
	t.Cleanup(func() { searchDirs = orig })
	dir := t.TempDir()
	searchDirs = func() []string { return []string{dir} }

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Repo:       ".",
		Theme:      "auto",
		Color:      "auto",
		WatchDelay: 350 * time.Millisecond,
	}, cfg)
}

func TestLoad_DefaultFileIsFound(t *testing.T) {
	orig := searchDirs
	t.Cleanup(func() { searchDirs = orig })
	path := writeConfig(t, "remote: upstream\n")
	searchDirs = func() []string { return []string{filepath.Dir(path)} }

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "upstream", cfg.Remote)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, "remote: upstream\ntheme: dark\nwatch_delay: 1s\ncolor: never\n")
	t.Setenv("ASYNCGIT_REMOTE", "fork")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "fork", cfg.Remote)
	assert.Equal(t, render.ThemeDark, cfg.ThemePreference())
	assert.Equal(t, render.ColorNever, cfg.ColorMode())
	assert.Equal(t, time.Second, cfg.WatchDelay)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	t.Parallel()

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	_, err := Load(viper.New(), writeConfig(t, "theme: neon\n"))
	assert.ErrorContains(t, err, `invalid theme "neon"`)

	_, err = Load(viper.New(), writeConfig(t, "color: sometimes\n"))
	assert.ErrorContains(t, err, "invalid color mode")
}

func TestConfig_YAML(t *testing.T) {
	t.Parallel()

	out, err := Config{Repo: "/src", Theme: "light", Color: "auto", WatchDelay: 2 * time.Second}.YAML()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, "/src", got["repo"])
	assert.Equal(t, "2s", got["watch_delay"])
	assert.Equal(t, false, got["verbose"])
}
