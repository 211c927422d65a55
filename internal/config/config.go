// Package config loads service settings from defaults, an optional TOML file,
// and WIDGETS_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WIDGETS_"

type Config struct {
	Server     Server     `toml:"server"`
	Log        Log        `toml:"log"`
	Storage    Storage    `toml:"storage"`
	Calculator Calculator `toml:"calculator"`
	Otel       Otel       `toml:"otel"`
}

type Server struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"-"`
}

type Log struct {
	Level string `toml:"level"`
}

type Storage struct {
	// Path is the JSON document backing theme and to-do state. Empty keeps
	// everything in memory.
	Path string `toml:"path"`
}

type Calculator struct {
	SessionTTL    time.Duration `toml:"-"`
	SweepInterval time.Duration `toml:"-"`
	MaxSessions   int           `toml:"max_sessions"`
}

type Otel struct {
	Enabled     bool   `toml:"enabled"`
	Logs        bool   `toml:"logs"`
	ServiceName string `toml:"service_name"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: Log{Level: "info"},
		Storage: Storage{
			Path: "",
		},
		Calculator: Calculator{
			SessionTTL:    30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   10000,
		},
		Otel: Otel{
			Enabled:     true,
			ServiceName: "widgets-api",
		},
	}
}

// Load builds the configuration. A missing file at path is not an error; an
// empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
			if err := applyFileDurations(&cfg, data); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return errors.New("config: server.addr is empty")
	case c.Server.ShutdownTimeout <= 0:
		return errors.New("config: server.shutdown_timeout must be positive")
	case c.Calculator.SessionTTL < 0:
		return errors.New("config: calculator.session_ttl must not be negative")
	case c.Calculator.MaxSessions < 0:
		return errors.New("config: calculator.max_sessions must not be negative")
	}
	return nil
}

// fileDurations holds the duration keys as written in the file, e.g. "30m".
type fileDurations struct {
	Server struct {
		ShutdownTimeout string `toml:"shutdown_timeout"`
	} `toml:"server"`
	Calculator struct {
		SessionTTL    string `toml:"session_ttl"`
		SweepInterval string `toml:"sweep_interval"`
	} `toml:"calculator"`
}

func applyFileDurations(cfg *Config, data []byte) error {
	var fd fileDurations
	if err := toml.Unmarshal(data, &fd); err != nil {
		return err
	}

	set := func(key, v string, dst *time.Duration) error {
		if v == "" {
			return nil
		}
		d, err := cast.ToDurationE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	return errors.Join(
		set("server.shutdown_timeout", fd.Server.ShutdownTimeout, &cfg.Server.ShutdownTimeout),
		set("calculator.session_ttl", fd.Calculator.SessionTTL, &cfg.Calculator.SessionTTL),
		set("calculator.sweep_interval", fd.Calculator.SweepInterval, &cfg.Calculator.SweepInterval),
	)
}

type lookupFunc func(key string) (string, bool)

// applyEnv overlays WIDGETS_* variables. OTEL_SERVICE_NAME is honoured too,
// matching the OTel SDK convention.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		d, err := cast.ToDurationE(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
		return nil
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str(EnvPrefix+"ADDR", &cfg.Server.Addr)
	str(EnvPrefix+"LOG_LEVEL", &cfg.Log.Level)
	str(EnvPrefix+"STORAGE_PATH", &cfg.Storage.Path)
	str("OTEL_SERVICE_NAME", &cfg.Otel.ServiceName)

	return errors.Join(
		dur("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout),
		dur("SESSION_TTL", &cfg.Calculator.SessionTTL),
		dur("SWEEP_INTERVAL", &cfg.Calculator.SweepInterval),
		integer("MAX_SESSIONS", &cfg.Calculator.MaxSessions),
		boolean("OTEL_ENABLED", &cfg.Otel.Enabled),
		boolean("OTEL_LOGS", &cfg.Otel.Logs),
	)
}
