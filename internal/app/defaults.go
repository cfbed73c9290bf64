package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"addrbook/internal/config"
)

// Defaults holds the paths used when no config file overrides them.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - ADDRBOOK_CONFIG_PATH: config file location (default: ~/.config/addrbook.toml)
//   - ADDRBOOK_HOME: base directory for addrbook data (default: ~/.local/share/addrbook)
func GetDefaults() (Defaults, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return Defaults{}, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return Defaults{}, err
	}

	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// LoadConfig reads the config file named by d. A missing file is reported
// with a hint to run `addrbook config init`.
func LoadConfig(d Defaults) (*config.Config, error) {
	cfg, err := config.ReadFromFile(d.ConfigPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no config at %s; run `addrbook config init` first", d.ConfigPath)
		}
		return nil, err
	}
	if cfg.LogDir == "" {
		cfg.LogDir = d.LogDir
	}
	return cfg, nil
}

// getConfigPath returns the config file path, checking ADDRBOOK_CONFIG_PATH env var first,
// then falling back to the default ~/.config/addrbook.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("ADDRBOOK_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "addrbook.toml"), nil
}

// getBaseDir returns the base directory for addrbook data, checking ADDRBOOK_HOME env var first,
// then falling back to the XDG default ~/.local/share/addrbook.
func getBaseDir() (string, error) {
	if path := os.Getenv("ADDRBOOK_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "addrbook"), nil
}
