// Package config loads movies configuration from a TOML file.
//
// Missing config file is not an error: defaults are used. Paths are
// expanded (~ is the home directory) and made absolute.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const defaultConfigPath = "~/.config/movies/config.toml"

// Config contains all settings of movies CLI
type Config struct {
	// file with movie list, one movie per line
	DataFile string `toml:"data_file"`
	// directory for daily log files. Empty means no log files
	LogDir string `toml:"log_dir"`
	// directory used by backup when destination is not absolute
	BackupDir string `toml:"backup_dir"`
	Verbose   bool   `toml:"verbose"`
}

// Default returns config used when there is no config file
func Default() Config {
	return Config{
		DataFile:  "~/.local/share/movies/movies.txt",
		LogDir:    "",
		BackupDir: "~/.local/share/movies/backups",
	}
}

// DefaultConfigPath returns the absolute path of default config file
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load reads config from path (or default location if path is empty).
// Returns config, resolved path of config file and true if it exists
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config '%s': %w", resolvedPath, err)
		}
	}

	if v := os.Getenv("MOVIES_FILE"); v != "" {
		cfg.DataFile = v
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	st, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if st.IsDir() {
		return "", false, fmt.Errorf("config path '%s' is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	var err error
	c.DataFile = strings.TrimSpace(c.DataFile)
	if c.DataFile, err = ExpandPath(c.DataFile); err != nil {
		return fmt.Errorf("data_file: %w", err)
	}
	if c.LogDir, err = ExpandPath(strings.TrimSpace(c.LogDir)); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}
	if c.BackupDir, err = ExpandPath(strings.TrimSpace(c.BackupDir)); err != nil {
		return fmt.Errorf("backup_dir: %w", err)
	}
	return nil
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return errors.New("data_file must be set")
	}
	if strings.HasSuffix(c.DataFile, string(filepath.Separator)) {
		return fmt.Errorf("data_file '%s' must be a file, not a directory", c.DataFile)
	}
	return nil
}

// ExpandPath expands ~ to home directory and makes path absolute.
// Empty path stays empty
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// Marshal returns c in TOML format
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// CreateSample writes a config file with default values to path
func CreateSample(path string) error {
	cfg := Default()
	d, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, d, 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
