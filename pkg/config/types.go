package config

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Chat UI modes.
const (
	ModeAuto = "auto"
	ModeTUI  = "tui"
	ModeLine = "line"
	ModeJSON = "json"
)

// ValidModes returns every accepted chat.mode value.
func ValidModes() []string {
	return []string{ModeAuto, ModeTUI, ModeLine, ModeJSON}
}

// Config represents the persistent neat configuration stored as config.toml
// in the .neat/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
	Log     LogConfig    `toml:"log"`
}

// ClientConfig holds settings for the connection to the agent server.
type ClientConfig struct {
	// Endpoint is a full base URL (scheme + host + port).
	Endpoint string `toml:"endpoint,omitempty"`

	// Timeout is a Go duration string. "0s" disables the timeout.
	Timeout string `toml:"timeout,omitempty"`
}

// ChatConfig holds settings for the chat UI.
type ChatConfig struct {
	Mode     string `toml:"mode,omitempty"`
	ImageDir string `toml:"image_dir,omitempty"`
	Plain    bool   `toml:"plain,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	JSON bool   `toml:"json,omitempty"`
	File string `toml:"file,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.endpoint": {
		get: func(c *Config) string { return c.Client.Endpoint },
		set: func(c *Config, v string) error { c.Client.Endpoint = v; return nil },
	},
	"client.timeout": {
		get: func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for client.timeout: %w", err)
			}
			if d < 0 {
				return fmt.Errorf("invalid value for client.timeout: %q is negative", v)
			}
			c.Client.Timeout = d.String()
			return nil
		},
	},
	"chat.mode": {
		get: func(c *Config) string { return c.Chat.Mode },
		set: func(c *Config, v string) error {
			if !slices.Contains(ValidModes(), v) {
				return fmt.Errorf("invalid value for chat.mode: %q (available: %v)", v, ValidModes())
			}
			c.Chat.Mode = v
			return nil
		},
	},
	"chat.image_dir": {
		get: func(c *Config) string { return c.Chat.ImageDir },
		set: func(c *Config, v string) error { c.Chat.ImageDir = v; return nil },
	},
	"chat.plain": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.Plain) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.plain: %w", err)
			}
			c.Chat.Plain = b
			return nil
		},
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.json: %w", err)
			}
			c.Log.JSON = b
			return nil
		},
	},
	"log.file": {
		get: func(c *Config) string { return c.Log.File },
		set: func(c *Config, v string) error { c.Log.File = v; return nil },
	},
}
