// Package config loads tool configuration from TOML. Absent keys keep
// their defaults; present keys override, even with zero values.
package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/DanWilson00/mavwire/errors"
)

// Config drives the command-line tool and any embedding application.
type Config struct {
	Dialect DialectConfig
	Stream  StreamConfig
	Log     LogConfig
}

// DialectConfig names the definition documents to load.
type DialectConfig struct {
	// Path is the root XML definition document. Includes resolve
	// relative to its directory.
	Path string
	// Document is a precompiled JSON document, used instead of Path
	// when set.
	Document string
}

// StreamConfig shapes the replay pipeline.
type StreamConfig struct {
	SystemID    uint8
	ComponentID uint8
	ChunkSize   int
	Interval    time.Duration
	EnumNames   bool
}

// LogConfig selects logging output.
type LogConfig struct {
	Level string
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Stream: StreamConfig{
			SystemID:    255,
			ComponentID: 190,
			ChunkSize:   256,
		},
		Log: LogConfig{Level: "info"},
	}
}

type fileConfig struct {
	Dialect struct {
		Path     string `toml:"path"`
		Document string `toml:"document"`
	} `toml:"dialect"`
	Stream struct {
		SystemID    int    `toml:"system_id"`
		ComponentID int    `toml:"component_id"`
		ChunkSize   int    `toml:"chunk_size"`
		Interval    string `toml:"interval"`
		EnumNames   bool   `toml:"enum_names"`
	} `toml:"stream"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, path)
	}

	if meta.IsDefined("dialect", "path") {
		cfg.Dialect.Path = strings.TrimSpace(raw.Dialect.Path)
	}
	if meta.IsDefined("dialect", "document") {
		cfg.Dialect.Document = strings.TrimSpace(raw.Dialect.Document)
	}

	if meta.IsDefined("stream", "system_id") {
		if raw.Stream.SystemID < 0 || raw.Stream.SystemID > 255 {
			return Config{}, errors.InvalidInput(errors.PhaseLoad, "stream.system_id out of range")
		}
		cfg.Stream.SystemID = uint8(raw.Stream.SystemID)
	}
	if meta.IsDefined("stream", "component_id") {
		if raw.Stream.ComponentID < 0 || raw.Stream.ComponentID > 255 {
			return Config{}, errors.InvalidInput(errors.PhaseLoad, "stream.component_id out of range")
		}
		cfg.Stream.ComponentID = uint8(raw.Stream.ComponentID)
	}
	if meta.IsDefined("stream", "chunk_size") {
		if raw.Stream.ChunkSize <= 0 {
			return Config{}, errors.InvalidInput(errors.PhaseLoad, "stream.chunk_size must be positive")
		}
		cfg.Stream.ChunkSize = raw.Stream.ChunkSize
	}
	if meta.IsDefined("stream", "interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Stream.Interval))
		if err != nil {
			return Config{}, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "stream.interval")
		}
		cfg.Stream.Interval = d
	}
	if meta.IsDefined("stream", "enum_names") {
		cfg.Stream.EnumNames = raw.Stream.EnumNames
	}

	if meta.IsDefined("log", "level") {
		level := strings.ToLower(strings.TrimSpace(raw.Log.Level))
		switch level {
		case "debug", "info", "warn", "error":
			cfg.Log.Level = level
		default:
			return Config{}, errors.InvalidInput(errors.PhaseLoad, "log.level must be debug, info, warn or error")
		}
	}

	return cfg, nil
}
