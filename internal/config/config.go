// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package config loads the server configuration from layered sources:
// built-in defaults, an optional YAML file, and MELODEON_-prefixed
// environment variables, in ascending precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Admin    AdminConfig    `koanf:"admin"`
	Library  LibraryConfig  `koanf:"library"`
	Zeroconf ZeroconfConfig `koanf:"zeroconf"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the DAAP listener.
type ServerConfig struct {
	// Name is the shared library name shown in iTunes.
	Name string `koanf:"name"`

	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Password enables HTTP Basic auth (password only) when non-empty.
	Password string `koanf:"password"`

	// Timeout bounds request handling except long-poll and streaming.
	Timeout time.Duration `koanf:"timeout"`
}

// AdminConfig configures the operational endpoint (/metrics, /healthz).
type AdminConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
}

// LibraryConfig configures the filesystem-backed library.
type LibraryConfig struct {
	// Path is the directory scanned for media files.
	Path string `koanf:"path"`

	// Database is the name of the single served database.
	Database string `koanf:"database"`
}

// ZeroconfConfig configures Bonjour advertisement.
type ZeroconfConfig struct {
	Enabled bool `koanf:"enabled"`
}

// CacheConfig configures the object response cache.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// LoggingConfig configures the zerolog layer.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults; file and environment layers
// override these.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "Melodeon",
			Host:    "0.0.0.0",
			Port:    3689, // registered DAAP port
			Timeout: 30 * time.Second,
		},
		Admin: AdminConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    3690,
		},
		Library: LibraryConfig{
			Path:     "/media",
			Database: "Library",
		},
		Zeroconf: ZeroconfConfig{
			Enabled: true,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1024,
			TTL:      6 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server.name must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Admin.Enabled && (c.Admin.Port < 1 || c.Admin.Port > 65535) {
		return fmt.Errorf("admin.port %d out of range", c.Admin.Port)
	}
	if c.Admin.Enabled && c.Admin.Port == c.Server.Port && c.Admin.Host == c.Server.Host {
		return fmt.Errorf("admin and server listeners collide on %s:%d", c.Admin.Host, c.Admin.Port)
	}
	if c.Library.Path == "" {
		return fmt.Errorf("library.path must not be empty")
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity must not be negative")
	}
	return nil
}

// Addr returns the DAAP listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the admin listen address.
func (c *AdminConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
