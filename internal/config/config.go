package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the application configuration.
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Sync   SyncConfig   `toml:"sync"`
	Cache  CacheConfig  `toml:"cache"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig holds storage locations.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// SyncConfig drives the background sync loop.
type SyncConfig struct {
	IntervalSeconds     int `toml:"interval_seconds"`
	RetryBackoffSeconds int `toml:"retry_backoff_seconds"`
}

// CacheConfig controls the offline asset cache. Bumping Version is the
// only way existing cache partitions get invalidated.
type CacheConfig struct {
	Version        string   `toml:"version"`
	StaticAssets   []string `toml:"static_assets"`
	ExternalAssets []string `toml:"external_assets"`
	Icons          []string `toml:"icons"`
}

// LoadConfigInfo carries metadata about how the config was loaded.
type LoadConfigInfo struct {
	PortSpecified bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20250,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Sync: SyncConfig{
			IntervalSeconds:     30,
			RetryBackoffSeconds: 15,
		},
		Cache: CacheConfig{
			Version: "v3",
			StaticAssets: []string{
				"/",
				"/manifest.json",
			},
			ExternalAssets: nil,
			Icons: []string{
				"/icons/icon-192x192.png",
				"/icons/icon-512x512.png",
			},
		},
	}
}

// SyncInterval returns the loop interval as a duration.
func (c *AppConfig) SyncInterval() time.Duration {
	if c.Sync.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Sync.IntervalSeconds) * time.Second
}

// RetryBackoff returns the failure backoff as a duration.
func (c *AppConfig) RetryBackoff() time.Duration {
	if c.Sync.RetryBackoffSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Sync.RetryBackoffSeconds) * time.Second
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory of the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo loads config.toml from the executable directory and
// returns load metadata. A missing file yields the defaults.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	return config, info, nil
}

// LoadConfig loads config.toml from the executable directory.
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig writes the configuration back to config.toml.
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir creates the data directory tree next to the executable
// and returns its absolute path.
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"sessions", "exports", "uploads"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
