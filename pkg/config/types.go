package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent tagstash configuration stored as
// config.toml in the .tagstash/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	Tags    TagsConfig    `toml:"tags"`
	API     APIConfig     `toml:"api"`
	Events  EventsConfig  `toml:"events"`
	MCP     MCPConfig     `toml:"mcp"`
}

// StorageConfig selects and tunes the storage driver.
type StorageConfig struct {
	// Driver is one of "sqlite", "postgres" or "memory".
	Driver      string `toml:"driver,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`

	// Pool settings, only used by the postgres driver. Durations use Go
	// duration syntax ("30s", "2m").
	MaxConns        uint   `toml:"max_conns,omitempty"`
	MaxConnIdleTime string `toml:"max_conn_idle_time,omitempty"`
	ConnectTimeout  string `toml:"connect_timeout,omitempty"`
}

// TagsConfig bounds tag extraction.
type TagsConfig struct {
	MaxLength    uint `toml:"max_length,omitempty"`
	MaxPerRecord uint `toml:"max_per_record,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// EventsConfig selects where record lifecycle events are published.
type EventsConfig struct {
	// Provider is "nop" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// MCPConfig toggles the MCP endpoint of the API server.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if !isValidDriver(v) {
				return fmt.Errorf("invalid value for storage.driver: %q (available: %s)", v, strings.Join(ValidDrivers(), ", "))
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.max_conns": {
		get: func(c *Config) string { return formatUint(c.Storage.MaxConns) },
		set: func(c *Config, v string) error {
			n, err := parseUint("storage.max_conns", v)
			if err != nil {
				return err
			}
			c.Storage.MaxConns = n
			return nil
		},
	},
	"storage.max_conn_idle_time": {
		get: func(c *Config) string { return c.Storage.MaxConnIdleTime },
		set: func(c *Config, v string) error {
			if err := checkDuration("storage.max_conn_idle_time", v); err != nil {
				return err
			}
			c.Storage.MaxConnIdleTime = v
			return nil
		},
	},
	"storage.connect_timeout": {
		get: func(c *Config) string { return c.Storage.ConnectTimeout },
		set: func(c *Config, v string) error {
			if err := checkDuration("storage.connect_timeout", v); err != nil {
				return err
			}
			c.Storage.ConnectTimeout = v
			return nil
		},
	},
	"tags.max_length": {
		get: func(c *Config) string { return formatUint(c.Tags.MaxLength) },
		set: func(c *Config, v string) error {
			n, err := parseUint("tags.max_length", v)
			if err != nil {
				return err
			}
			c.Tags.MaxLength = n
			return nil
		},
	},
	"tags.max_per_record": {
		get: func(c *Config) string { return formatUint(c.Tags.MaxPerRecord) },
		set: func(c *Config, v string) error {
			n, err := parseUint("tags.max_per_record", v)
			if err != nil {
				return err
			}
			c.Tags.MaxPerRecord = n
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			if v != EventsProviderNop && v != EventsProviderKafka {
				return fmt.Errorf("invalid value for events.provider: %q (available: %s, %s)", v, EventsProviderNop, EventsProviderKafka)
			}
			c.Events.Provider = v
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error { c.Events.Brokers = splitList(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"mcp.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.MCP.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for mcp.enabled: %w", err)
			}
			c.MCP.Enabled = b
			return nil
		},
	},
}

func formatUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

func parseUint(key, v string) (uint, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return uint(n), nil
}

func checkDuration(key, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid value for %s: must be positive", key)
	}
	return nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isValidDriver(name string) bool {
	for _, d := range ValidDrivers() {
		if d == name {
			return true
		}
	}
	return false
}
