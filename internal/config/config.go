// Package config loads server configuration from a TOML file, then
// layers APP_-prefixed environment variables on top so deployments can
// override individual fields without touching the file on disk. Nesting
// in env var names uses "__" as the section separator, e.g.
// APP_DB__REDIS_URL overrides [db] redis_url. Field and section names
// follow spec §6's external interface verbatim.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full set of tunables the server reads at startup.
type Config struct {
	IP       string      `toml:"ip"`
	Port     int         `toml:"port"`
	LogLevel string      `toml:"log_level"`
	DB       DBConfig    `toml:"db"`
	SQLite   SQLiteConfig `toml:"sqlite"`
	Telem    TelemConfig `toml:"telem"`
}

// DBConfig configures the relational and key/value store connections
// (spec §6).
type DBConfig struct {
	RedisURL string `toml:"redis_url"`
	MySQLURL string `toml:"mysql_url"`
}

// SQLiteConfig configures the local channel-seed/bot cache. Spec §6 names
// only the relational and key/value stores; this section is an addition
// for the local cache described in DESIGN.md.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// TelemConfig configures the optional telemetry exporter (spec §6:
// "optional telem.endpoint"). When Endpoint is non-empty the Prometheus
// /metrics route is served at that path.
type TelemConfig struct {
	Endpoint string `toml:"endpoint"`
}

// Default returns the configuration used when no file and no environment
// overrides are present — suitable for local development only.
func Default() Config {
	return Config{
		IP:       "127.0.0.1",
		Port:     8080,
		LogLevel: "info",
		DB: DBConfig{
			RedisURL: "redis://127.0.0.1:6379/0",
			MySQLURL: "bancho:bancho@tcp(127.0.0.1:3306)/bancho",
		},
		SQLite: SQLiteConfig{Path: "bancho.db"},
		Telem:  TelemConfig{Endpoint: ""},
	}
}

// Load builds a Config starting from Default(), overlaying path (if
// non-empty and present on disk), then overlaying APP_-prefixed
// environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Addr returns the combined listen address Echo should bind to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.IP, c.Port)
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("APP_IP"); ok {
		cfg.IP = v
	}
	if v, ok := os.LookupEnv("APP_PORT"); ok {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v, ok := os.LookupEnv("APP_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("APP_DB__REDIS_URL"); ok {
		cfg.DB.RedisURL = v
	}
	if v, ok := os.LookupEnv("APP_DB__MYSQL_URL"); ok {
		cfg.DB.MySQLURL = v
	}
	if v, ok := os.LookupEnv("APP_SQLITE__PATH"); ok {
		cfg.SQLite.Path = v
	}
	if v, ok := os.LookupEnv("APP_TELEM__ENDPOINT"); ok {
		cfg.Telem.Endpoint = v
	}
}
