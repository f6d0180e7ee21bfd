package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. RAGCHAT_SERVER_BASE_URL.
const EnvPrefix = "RAGCHAT"

// Config represents the application configuration
type Config struct {
	Server ServerConfig `json:"server" mapstructure:"server"`
	UI     UIConfig     `json:"ui" mapstructure:"ui"`
	Data   DataConfig   `json:"data" mapstructure:"data"`
	Log    LogConfig    `json:"log" mapstructure:"log"`
	Cache  CacheConfig  `json:"cache" mapstructure:"cache"`
}

// ServerConfig locates the chat backend
type ServerConfig struct {
	BaseURL string `json:"base_url" mapstructure:"base_url" validate:"required,url"`
	// RequestTimeoutSeconds of 0 leaves requests unbounded.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" mapstructure:"request_timeout_seconds" validate:"gte=0"`
}

// UIConfig represents UI configuration
type UIConfig struct {
	Theme          string `json:"theme" mapstructure:"theme" validate:"omitempty,oneof=light dark"`
	FontSize       int    `json:"font_size" mapstructure:"font_size" validate:"gte=0"`
	WindowWidth    int    `json:"window_width" mapstructure:"window_width" validate:"gt=0"`
	WindowHeight   int    `json:"window_height" mapstructure:"window_height" validate:"gt=0"`
	MinimizeToTray bool   `json:"minimize_to_tray" mapstructure:"minimize_to_tray"`
}

// DataConfig represents local data locations
type DataConfig struct {
	PrefsPath string `json:"prefs_path" mapstructure:"prefs_path" validate:"required"`
	ExportDir string `json:"export_dir" mapstructure:"export_dir"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Path  string `json:"path" mapstructure:"path"`
	Level string `json:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// CacheConfig controls how long backend catalogues are reused
type CacheConfig struct {
	ModelsTTLSeconds int `json:"models_ttl_seconds" mapstructure:"models_ttl_seconds" validate:"gte=0"`
}

// DefaultConfig returns the configuration written on first start.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:5000",
		},
		UI: UIConfig{
			Theme:          "light",
			FontSize:       14,
			WindowWidth:    1200,
			WindowHeight:   800,
			MinimizeToTray: false,
		},
		Data: DataConfig{
			PrefsPath: "./data/prefs.db",
			ExportDir: "",
		},
		Log: LogConfig{
			Path:  GetLogPath(),
			Level: "info",
		},
		Cache: CacheConfig{
			ModelsTTLSeconds: 300,
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("server.base_url", def.Server.BaseURL)
	v.SetDefault("server.request_timeout_seconds", def.Server.RequestTimeoutSeconds)
	v.SetDefault("ui.theme", def.UI.Theme)
	v.SetDefault("ui.font_size", def.UI.FontSize)
	v.SetDefault("ui.window_width", def.UI.WindowWidth)
	v.SetDefault("ui.window_height", def.UI.WindowHeight)
	v.SetDefault("ui.minimize_to_tray", def.UI.MinimizeToTray)
	v.SetDefault("data.prefs_path", def.Data.PrefsPath)
	v.SetDefault("data.export_dir", def.Data.ExportDir)
	v.SetDefault("log.path", def.Log.Path)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("cache.models_ttl_seconds", def.Cache.ModelsTTLSeconds)
}

// LoadConfig loads configuration from file, applying defaults and RAGCHAT_* environment overrides
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Server.BaseURL = strings.TrimRight(config.Server.BaseURL, "/")
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.Data.PrefsPath = expandPath(config.Data.PrefsPath)
	if config.Data.ExportDir != "" {
		config.Data.ExportDir = expandPath(config.Data.ExportDir)
	}
	if config.Log.Path != "" {
		config.Log.Path = expandPath(config.Log.Path)
	}

	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(configPath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ and relative paths
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	absPath, err := filepath.Abs(path)
	if err == nil {
		return absPath
	}

	return path
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./config/default.json"
	}

	return filepath.Join(configDir, "rag-chat-client", "config.json")
}

// EnsureDefaultConfig creates a default config file at configPath if it doesn't exist.
// An empty configPath means GetConfigPath().
func EnsureDefaultConfig(configPath string) (string, error) {
	if configPath == "" {
		configPath = GetConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	if err := SaveConfig(configPath, DefaultConfig()); err != nil {
		return "", err
	}

	return configPath, nil
}

// GetDefaultExportPath returns the directory exports are written to, creating it if needed.
func (c *Config) GetDefaultExportPath() (string, error) {
	dir := c.Data.ExportDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, "Documents", "rag-chat-client-exports")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return dir, nil
}
