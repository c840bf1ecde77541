package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = ".userconsole"
	configFileName = "config.json"
)

// FileConfig is the CLI config file, ~/.userconsole/config.json
type FileConfig struct {
	APIURL    string `json:"api_url,omitempty"`
	PublicURL string `json:"public_url,omitempty"`
}

// ConfigDir returns dir, or ~/.userconsole when dir is empty
func ConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName), nil
}

// ConfigPath returns the config file inside ConfigDir(dir)
func ConfigPath(dir string) (string, error) {
	base, err := ConfigDir(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configFileName), nil
}

// LoadFile reads the config file. A missing file is an empty config.
func LoadFile(dir string) (*FileConfig, error) {
	path, err := ConfigPath(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveFile writes cfg, creating the config directory when needed
func SaveFile(dir string, cfg *FileConfig) error {
	base, err := ConfigDir(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(base, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(base, configFileName), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
