// Package config loads service configuration from an optional YAML file,
// environment variables, and command-line flags, in that order of increasing
// precedence.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the spiceapi service.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	DatabaseDSN  string `yaml:"database_dsn"`
	AssetsDir    string `yaml:"assets_dir"`
	Dev          bool   `yaml:"dev"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		DatabaseDSN: "file:spice.db?_pragma=foreign_keys(1)",
		AssetsDir:   "./assets-data",
		Dev:         false,
	}
}

// Load builds a Config starting from Default, overlaying an optional YAML
// file at path (skipped if empty or missing), then SPICE_-prefixed
// environment variables, then flags already parsed into fs.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v, ok := os.LookupEnv("SPICE_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("SPICE_DATABASE_DSN"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SPICE_ASSETS_DIR"); ok {
		cfg.AssetsDir = v
	}

	if fs != nil {
		if v, err := fs.GetString("listen-addr"); err == nil && fs.Changed("listen-addr") {
			cfg.ListenAddr = v
		}
		if v, err := fs.GetString("database-dsn"); err == nil && fs.Changed("database-dsn") {
			cfg.DatabaseDSN = v
		}
		if v, err := fs.GetString("assets-dir"); err == nil && fs.Changed("assets-dir") {
			cfg.AssetsDir = v
		}
		if v, err := fs.GetBool("dev"); err == nil && fs.Changed("dev") {
			cfg.Dev = v
		}
	}

	return cfg, nil
}

// BindFlags registers the flags Load reads back via fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("listen-addr", "", "HTTP listen address")
	fs.String("database-dsn", "", "sqlite data source name")
	fs.String("assets-dir", "", "local directory backing the asset blob store")
	fs.Bool("dev", false, "enable development-mode logging")
}
