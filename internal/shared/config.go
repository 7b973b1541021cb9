package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Fretboard FretboardConfig `toml:"fretboard"`
	Practice  PracticeConfig  `toml:"practice"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"` // requests per second per client, 0 disables limiting
	Burst     int     `toml:"burst"`
}

// Address joins host and port.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

// StorageConfig selects the exercise store.
type StorageConfig struct {
	Driver string `toml:"driver"`
	Dir    string `toml:"dir"` // directory of the file driver
}

// FretboardConfig holds the defaults for rendered fretboards.
type FretboardConfig struct {
	Preset     string `toml:"preset"`
	StartFret  int    `toml:"start_fret"`
	EndFret    int    `toml:"end_fret"`
	ExtraFrets int    `toml:"extra_frets"`
}

// PracticeConfig holds metronome and session timer defaults.
type PracticeConfig struct {
	BPM         int `toml:"bpm"`
	BeatsPerBar int `toml:"beats_per_bar"`
	Minutes     int `toml:"minutes"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for the sqlite driver", ErrInvalidConfig)
		}
	case StorageFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("%w: storage.dir is required for the file driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("%w: server.rate_limit and server.burst must not be negative", ErrInvalidConfig)
	}

	f := c.Fretboard
	if f.StartFret < 0 || f.StartFret > f.EndFret || f.EndFret > 24 {
		return fmt.Errorf("%w: fretboard range %d-%d", ErrInvalidConfig, f.StartFret, f.EndFret)
	}
	if f.ExtraFrets < 0 || f.ExtraFrets > 24 {
		return fmt.Errorf("%w: fretboard.extra_frets %d", ErrInvalidConfig, f.ExtraFrets)
	}

	p := c.Practice
	if p.BPM < 20 || p.BPM > 300 {
		return fmt.Errorf("%w: practice.bpm %d outside 20-300", ErrInvalidConfig, p.BPM)
	}
	if p.BeatsPerBar < 1 || p.BeatsPerBar > 16 {
		return fmt.Errorf("%w: practice.beats_per_bar %d outside 1-16", ErrInvalidConfig, p.BeatsPerBar)
	}
	if p.Minutes < 0 {
		return fmt.Errorf("%w: practice.minutes must not be negative", ErrInvalidConfig)
	}
	return nil
}
