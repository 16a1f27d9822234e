package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNothingSupplied(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadYAMLFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9090\"\ndev: true\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.True(t, cfg.Dev)
	require.Equal(t, Default().DatabaseDSN, cfg.DatabaseDSN)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadEnvVarOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9090\"\n"), 0o644))
	t.Setenv("SPICE_LISTEN_ADDR", ":7070")
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.ListenAddr)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	t.Setenv("SPICE_LISTEN_ADDR", ":7070")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--listen-addr=:6060", "--dev=true"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	require.Equal(t, ":6060", cfg.ListenAddr)
	require.True(t, cfg.Dev)
}
