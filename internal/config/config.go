package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvPath names an environment variable that overrides the config file path.
const EnvPath = "FSIZE_CONFIG"

// Config represents the optional fsize configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. A nil field means the
// value was not set in the file.
type DefaultsConfig struct {
	Strategy *string `toml:"strategy"`
	Reserve  *bool   `toml:"reserve"`
	Verify   *bool   `toml:"verify"`
	LogLevel *string `toml:"log_level"`
}

// Path returns the resolved path to the config file.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "fsize", "config.toml")
}

// Load reads the config file from Path. Returns a zero Config (no error)
// if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero
// Config; undecoded keys are reported as an error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, &UnknownKeyError{Path: path, Key: undecoded[0].String()}
	}
	return cfg, nil
}

// UnknownKeyError reports a key in the config file that fsize does not use.
type UnknownKeyError struct {
	Path string
	Key  string
}

func (e *UnknownKeyError) Error() string {
	return e.Path + ": unknown config key " + e.Key
}
