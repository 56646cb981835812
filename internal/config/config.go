package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/codefionn/calcschnell/internal/consts"
)

const appName = "calcschnell"

// Environment variables that override file values
const (
	EnvLogLevel = "CALCSCHNELL_LOG_LEVEL"
	EnvLogPath  = "CALCSCHNELL_LOG_PATH"
)

// ServerConfig holds settings for the HTTP/WebSocket service
type ServerConfig struct {
	Addr               string   `json:"addr"`
	ReadTimeoutSeconds int      `json:"read_timeout_seconds"`
	AllowedOrigins     []string `json:"allowed_origins,omitempty"` // empty allows any origin
}

// TUIConfig holds settings for the terminal calculator
type TUIConfig struct {
	ShowHistory bool `json:"show_history"`
	HistoryRows int  `json:"history_rows"`
}

// BatchConfig holds settings for batch evaluation
type BatchConfig struct {
	Workers int `json:"workers"`
}

// Config represents application configuration
type Config struct {
	LogLevel       string       `json:"log_level"` // debug, info, warn, error, none
	LogPath        string       `json:"-"`
	HistoryEnabled bool         `json:"history_enabled"`
	HistoryPath    string       `json:"history_path"`
	HistoryLimit   int          `json:"history_limit"` // rows kept after pruning, 0 keeps everything
	Server         ServerConfig `json:"server"`
	TUI            TUIConfig    `json:"tui"`
	Batch          BatchConfig  `json:"batch"`
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	default:
		if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
			return filepath.Join(configHome, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", appName)
	}
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", appName)
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, appName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Local", appName)
	default:
		return defaultConfigDir()
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	stateDir := defaultStateDir()

	return &Config{
		LogLevel:       "info",
		LogPath:        filepath.Join(stateDir, appName+".log"),
		HistoryEnabled: true,
		HistoryPath:    filepath.Join(stateDir, "history.db"),
		HistoryLimit:   consts.DefaultHistoryLimit,
		Server: ServerConfig{
			Addr:               "localhost:8937",
			ReadTimeoutSeconds: 30,
		},
		TUI: TUIConfig{
			ShowHistory: true,
			HistoryRows: 8,
		},
		Batch: BatchConfig{
			Workers: consts.DefaultBatchWorkers,
		},
	}
}

// Load loads configuration from file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	// Unmarshal into default config (overrides only provided fields)
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	config.fillDefaults()
	return config, nil
}

// fillDefaults restores defaults for fields a config file blanked out
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()

	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogPath == "" {
		c.LogPath = defaults.LogPath
	}
	if c.HistoryPath == "" {
		c.HistoryPath = defaults.HistoryPath
	}
	if c.HistoryLimit < 0 {
		c.HistoryLimit = 0
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ReadTimeoutSeconds <= 0 {
		c.Server.ReadTimeoutSeconds = defaults.Server.ReadTimeoutSeconds
	}
	if c.TUI.HistoryRows <= 0 {
		c.TUI.HistoryRows = defaults.TUI.HistoryRows
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaults.Batch.Workers
	}
}

// ApplyEnvironment lets environment variables override logging settings
func (c *Config) ApplyEnvironment() {
	if envLevel := strings.TrimSpace(os.Getenv(EnvLogLevel)); envLevel != "" {
		c.LogLevel = envLevel
	}
	if envPath := strings.TrimSpace(os.Getenv(EnvLogPath)); envPath != "" {
		c.LogPath = envPath
	}
}

// IsOriginAllowed checks a WebSocket Origin header against the allow list
func (c *Config) IsOriginAllowed(origin string) bool {
	if len(c.Server.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range c.Server.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}
