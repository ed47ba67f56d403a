package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/vibe-coding/cliprelay/pkg/chain"
	"github.com/vibe-coding/cliprelay/pkg/hotkey"
	"github.com/vibe-coding/cliprelay/pkg/timer"
)

type Config struct {
	Hotkeys []HotkeyConfig `toml:"hotkeys"`
	Timer   TimerConfig    `toml:"timer"`
	Keys    KeysConfig     `toml:"keys"`
	Log     LogConfig      `toml:"log"`
}

// HotkeyConfig binds a key combination to a relay event.
type HotkeyConfig struct {
	Combo   string `toml:"combo"`
	Event   string `toml:"event"`
	Payload string `toml:"payload"`
}

type TimerConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
}

type KeysConfig struct {
	DelayMS int `toml:"delay_ms"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default configuration
func Default() *Config {
	return &Config{
		Hotkeys: []HotkeyConfig{
			{Combo: "alt+ctrl+c", Event: chain.TagCopy},
			{Combo: "alt+ctrl+n", Event: chain.TagWindow, Payload: "Show window"},
		},
		Timer: TimerConfig{
			Enabled:         true,
			IntervalSeconds: int(timer.DefaultInterval / time.Second),
		},
		Keys: KeysConfig{DelayMS: 20},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns ~/.cliprelay/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cliprelay", "config.toml"), nil
}

// Load reads the TOML file at path. A missing file is created with the
// default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg := Default()
	// An explicit hotkeys table replaces the defaults instead of merging.
	cfg.Hotkeys = nil
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if !md.IsDefined("hotkeys") {
		cfg.Hotkeys = Default().Hotkeys
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating the parent directory.
func Save(path string, cfg *Config) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return toml.NewEncoder(f).Encode(cfg)
}

var events = map[string]string{
	chain.TagCopy:   chain.TagCopy,
	chain.TagEnigo:  chain.TagCopy,
	chain.TagDelete: chain.TagDelete,
	chain.TagPrint:  chain.TagPrint,
	chain.TagWindow: chain.TagWindow,
}

// EventTag maps a configured event name to the relay tag it emits.
func EventTag(name string) (string, bool) {
	tag, ok := events[strings.ToLower(strings.TrimSpace(name))]
	return tag, ok
}

func (c *Config) Validate() error {
	for i, hk := range c.Hotkeys {
		if _, err := hotkey.ParseCombo(hk.Combo); err != nil {
			return fmt.Errorf("hotkeys[%d]: %w", i, err)
		}
		if _, ok := EventTag(hk.Event); !ok {
			return fmt.Errorf("hotkeys[%d]: unknown event %q", i, hk.Event)
		}
	}
	if c.Timer.Enabled && c.Timer.IntervalSeconds <= 0 {
		return fmt.Errorf("timer.interval_seconds must be positive, got %d", c.Timer.IntervalSeconds)
	}
	if c.Keys.DelayMS < 0 {
		return fmt.Errorf("keys.delay_ms must not be negative, got %d", c.Keys.DelayMS)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.Timer.IntervalSeconds) * time.Second
}

func (c *Config) KeyDelay() time.Duration {
	return time.Duration(c.Keys.DelayMS) * time.Millisecond
}
