// Package config loads server settings from an optional TOML file with
// environment variable overrides on top.
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Addr        string `toml:"addr"`
	DatabaseURL string `toml:"database_url"`
	Secret      string `toml:"secret"`
	PageSize    int    `toml:"page_size"`
}

func Default() Config {
	return Config{
		Addr:        ":3000",
		DatabaseURL: "sqlite://db.sqlite3",
		Secret:      "secret",
		PageSize:    5,
	}
}

// Load reads the TOML file at path (skipped when path is empty), then
// applies ADDR, DB_URL, APP_SECRET and PAGE_SIZE from the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DB_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("APP_SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
		cfg.PageSize = n
	}
	return cfg, nil
}
