package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration, read from a YAML file. Every
// field has a default so a missing file is a valid zero setup.
type Config struct {
	ServerURL   string `yaml:"serverUrl"`
	UserID      string `yaml:"userId"`
	DataPath    string `yaml:"dataPath"`
	LogPath     string `yaml:"logPath"`
	PullSeconds int    `yaml:"pullSeconds"`
	PushSeconds int    `yaml:"pushSeconds"`
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".commitz", "config.yaml")
}

func defaultConfig(configPath string) Config {
	base := filepath.Dir(configPath)
	return Config{
		ServerURL:   "http://localhost:3000",
		DataPath:    filepath.Join(base, "local.json"),
		LogPath:     filepath.Join(base, "commitz.log"),
		PullSeconds: 20,
		PushSeconds: 30,
	}
}

// LoadConfig reads the file at path, filling unset fields with
// defaults. A missing file yields the pure defaults.
func LoadConfig(path string) (Config, error) {
	config := defaultConfig(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	loaded := Config{}
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if loaded.ServerURL != "" {
		config.ServerURL = loaded.ServerURL
	}
	if loaded.UserID != "" {
		config.UserID = loaded.UserID
	}
	if loaded.DataPath != "" {
		config.DataPath = loaded.DataPath
	}
	if loaded.LogPath != "" {
		config.LogPath = loaded.LogPath
	}
	if loaded.PullSeconds > 0 {
		config.PullSeconds = loaded.PullSeconds
	}
	if loaded.PushSeconds > 0 {
		config.PushSeconds = loaded.PushSeconds
	}
	return config, nil
}

func (config Config) PullInterval() time.Duration {
	return time.Duration(config.PullSeconds) * time.Second
}

func (config Config) PushInterval() time.Duration {
	return time.Duration(config.PushSeconds) * time.Second
}
