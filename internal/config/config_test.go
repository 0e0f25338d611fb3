package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gdb-field-catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GDBCATALOG_WORKSPACE", "GDBCATALOG_OUTPUT", "GDBCATALOG_WILDCARD",
		"GDBCATALOG_FEATURE_TYPE", "GDBCATALOG_CRLF", "GDBCATALOG_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("", CLIFlags{Workspace: "parcels.gpkg", WorkspaceSet: true})
	require.NoError(t, err)

	assert.Equal(t, "parcels.gpkg", cfg.Workspace)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, "*", cfg.Wildcard)
	assert.Equal(t, "", cfg.FeatureType)
	assert.False(t, cfg.CRLF)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigPriority(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
workspace: from-file.gpkg
output: from-file.csv
wildcard: Parc*
feature_type: Polygon
crlf: true
log_level: warn
`)

	// File only
	cfg, err := LoadConfig(path, CLIFlags{ConfigFileSet: true})
	require.NoError(t, err)
	assert.Equal(t, "from-file.gpkg", cfg.Workspace)
	assert.Equal(t, "from-file.csv", cfg.Output)
	assert.Equal(t, "Parc*", cfg.Wildcard)
	assert.Equal(t, "Polygon", cfg.FeatureType)
	assert.True(t, cfg.CRLF)
	assert.Equal(t, "warn", cfg.LogLevel)

	// Environment beats the file
	t.Setenv("GDBCATALOG_OUTPUT", "from-env.csv")
	t.Setenv("GDBCATALOG_CRLF", "no")
	cfg, err = LoadConfig(path, CLIFlags{ConfigFileSet: true})
	require.NoError(t, err)
	assert.Equal(t, "from-env.csv", cfg.Output)
	assert.False(t, cfg.CRLF)

	// Flags beat the environment
	cfg, err = LoadConfig(path, CLIFlags{
		ConfigFileSet:  true,
		Output:         "from-flag.csv",
		OutputSet:      true,
		FeatureType:    "All",
		FeatureTypeSet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "from-flag.csv", cfg.Output)
	assert.Equal(t, "All", cfg.FeatureType)
	assert.Equal(t, "from-file.gpkg", cfg.Workspace)
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	flags := CLIFlags{Workspace: "parcels.gpkg", WorkspaceSet: true}

	// A default config path that does not exist is ignored
	_, err := LoadConfig(missing, flags)
	require.NoError(t, err)

	// An explicit one is an error
	flags.ConfigFileSet = true
	_, err = LoadConfig(missing, flags)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "workspace: [unterminated")

	_, err := LoadConfig(path, CLIFlags{ConfigFileSet: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestValidateConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cases := []struct {
		name  string
		flags CLIFlags
	}{
		{"missing workspace", CLIFlags{}},
		{"unsupported scheme", CLIFlags{Workspace: "ftp://host/parcels.gpkg", WorkspaceSet: true}},
		{"empty output", CLIFlags{Workspace: "parcels.gpkg", WorkspaceSet: true, Output: " ", OutputSet: true}},
		{"output is a directory", CLIFlags{Workspace: "parcels.gpkg", WorkspaceSet: true, Output: dir, OutputSet: true}},
		{"unknown feature type", CLIFlags{Workspace: "parcels.gpkg", WorkspaceSet: true, FeatureType: "Raster", FeatureTypeSet: true}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadConfig("", c.flags)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrConfiguration))
		})
	}
}

func TestListOptions(t *testing.T) {
	cfg := &Config{Wildcard: "Road*", FeatureType: "Polyline"}
	assert.Equal(t, models.ListOptions{Wildcard: "Road*", FeatureType: "Polyline"}, cfg.ListOptions())
}
