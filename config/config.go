// Package config loads replay settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrUnknownKey is returned when a config file sets keys Config does not have.
var ErrUnknownKey = errors.New("config: unknown key")

// Memory kinds.
const (
	MemoryHeap   = "heap"
	MemoryMapped = "mmap"
	MemoryWasm   = "wasm"
)

// Config is the full replay configuration.
type Config struct {
	Renderer Renderer
	Memory   Memory
	Log      Log
}

// Renderer configures the dispatcher and backend.
type Renderer struct {
	Backend            string
	DisableSurfaceSync bool
	ColorSurfaceDebug  bool
	DumpDir            string
	DumpFormat         string
	QueueCapacity      int
}

// Memory configures guest memory.
type Memory struct {
	Kind string
	Size uint32
}

// Log configures the slog handler installed by the CLI.
type Log struct {
	Level string
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Renderer: Renderer{
			Backend:       "software",
			DumpDir:       ".",
			DumpFormat:    "png",
			QueueCapacity: 64,
		},
		Memory: Memory{
			Kind: MemoryHeap,
			Size: 16 << 20,
		},
		Log: Log{Level: "info"},
	}
}

// LoadFile reads path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, checkUndecoded(md)
}

// Load reads TOML from r over the defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, checkUndecoded(md)
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Memory.Kind {
	case MemoryHeap, MemoryMapped, MemoryWasm:
	default:
		return fmt.Errorf("config: unknown memory kind %q", c.Memory.Kind)
	}
	if c.Memory.Size == 0 {
		return errors.New("config: memory size is zero")
	}
	if c.Renderer.QueueCapacity < 0 {
		return fmt.Errorf("config: negative queue capacity %d", c.Renderer.QueueCapacity)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return l, nil
}

func checkUndecoded(md toml.MetaData) error {
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(names, ", "))
	}
	return nil
}
