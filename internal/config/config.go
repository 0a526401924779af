// Package config loads memstore's settings from defaults, an optional TOML
// file, and environment variable overrides, in that order of precedence.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the memstore server.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Store       StoreConfig       `toml:"store"`
	Server      ServerConfig      `toml:"server"`
	Transport   TransportConfig   `toml:"transport"`
	Log         LogConfig         `toml:"log"`
	Enhancement EnhancementConfig `toml:"enhancement"`
}

// StoreConfig controls where records live and which project new records
// default to.
type StoreConfig struct {
	Root           string `toml:"root"`
	DefaultProject string `toml:"default_project"`
}

// ServerConfig holds MCP server identity metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds HTTP/WS listen settings.
type TransportConfig struct {
	Host        string `toml:"host"`
	Port        string `toml:"port"`
	CORSOrigins string `toml:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// EnhancementConfig points at the optional local inference endpoint used by
// the Remote enhancer.
type EnhancementConfig struct {
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. MEMSTORE_CONFIG environment variable
//  3. ./memstore.toml (current directory)
//  4. ~/.config/memstore/memstore.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables always
// override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			Root:           "./memstore-data",
			DefaultProject: "default",
		},
		Server: ServerConfig{
			Name:    "memstored",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Host:        "127.0.0.1",
			Port:        "8787",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
		Enhancement: EnhancementConfig{
			Endpoint: "",
			Model:    "",
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath determines which config file to use. Returns empty
// string if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if p := os.Getenv("MEMSTORE_CONFIG"); p != "" {
		return p
	}

	if _, err := os.Stat("memstore.toml"); err == nil {
		return "memstore.toml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/memstore/memstore.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("MEMSTORE_STORE_ROOT", &c.Store.Root)
	envOverride("MEMSTORE_DEFAULT_PROJECT", &c.Store.DefaultProject)

	envOverride("MEMSTORE_HOST", &c.Transport.Host)
	envOverride("MEMSTORE_PORT", &c.Transport.Port)
	envOverride("MEMSTORE_CORS_ORIGINS", &c.Transport.CORSOrigins)

	envOverride("MEMSTORE_LOG_LEVEL", &c.Log.Level)

	envOverride("MEMSTORE_ENHANCEMENT_ENDPOINT", &c.Enhancement.Endpoint)
	envOverride("MEMSTORE_ENHANCEMENT_MODEL", &c.Enhancement.Model)
}

// Validate checks that required fields are present, failing fast before the
// server accepts its first request.
func (c *Config) Validate() error {
	if c.Store.Root == "" {
		return fmt.Errorf("store.root must not be empty")
	}
	if c.Store.DefaultProject == "" {
		return fmt.Errorf("store.default_project must not be empty")
	}
	return nil
}

// envOverride sets *dst to the value of the named env var, if it is non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
