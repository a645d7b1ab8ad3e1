package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/commonplaces/placecore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "placecore.db", cfg.Path)
	assert.Equal(t, 10*time.Second, cfg.OpenTimeout)
	assert.Equal(t, 100, cfg.ReminderPageSize)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "placecore.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
backend = "dolt"
path = "/var/lib/placecore"
accepted_licenses = ["ODbL-1.0", "CC0-1.0"]

[[moderated_tag_seeds]]
org_id = "org-1"
label = "verified"
allow_add = true
`), 0o644))

	cfg, err := config.Load(config.Options{TOMLPath: tomlPath})
	require.NoError(t, err)
	assert.Equal(t, "dolt", cfg.Backend)
	assert.Equal(t, "/var/lib/placecore", cfg.Path)
	assert.Equal(t, []string{"ODbL-1.0", "CC0-1.0"}, cfg.AcceptedLicenses)
	require.Len(t, cfg.ModeratedTagSeeds, 1)
	assert.Equal(t, "verified", cfg.ModeratedTagSeeds[0].Label)
	assert.True(t, cfg.ModeratedTagSeeds[0].AllowAdd)
}

func TestLoad_YAMLOverridesTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "placecore.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`backend = "dolt"`), 0o644))
	yamlPath := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("backend: memory\n"), 0o644))

	cfg, err := config.Load(config.Options{TOMLPath: tomlPath, YAMLPath: yamlPath})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Backend)
}

func TestLoad_EnvVarOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "placecore.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`backend = "dolt"`), 0o644))

	t.Setenv("PLACECORE_BACKEND", "memory")

	cfg, err := config.Load(config.Options{TOMLPath: tomlPath})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Backend)
}

func TestLoad_MissingTOMLFileErrors(t *testing.T) {
	_, err := config.Load(config.Options{TOMLPath: "/nonexistent/placecore.toml"})
	require.Error(t, err)
}
