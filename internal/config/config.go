package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Artifacts ArtifactsConfig `toml:"artifacts"`
	Auth      AuthConfig      `toml:"auth"`
	Cache     CacheConfig     `toml:"cache"`
	Storage   StorageConfig   `toml:"storage"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port" validate:"required,gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

// ArtifactsConfig locates the directories written by the external
// trading/backtesting engine.
type ArtifactsConfig struct {
	AnalysisDir string `toml:"analysis_dir" validate:"required"`
	BacktestDir string `toml:"backtest_dir" validate:"required"`
	// ReadConcurrency bounds parallel file reads in batch operations.
	ReadConcurrency int `toml:"read_concurrency" validate:"gte=0"`
}

// AuthConfig contains session JWT settings and the operator-provisioned
// admin login. User self-registration is a vire-accounts concern, not ours.
type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes" validate:"gte=0"`
	AdminUser       string `toml:"admin_user"`
	AdminPassword   string `toml:"admin_password"`
}

// CacheConfig contains parsed-artifact cache settings.
type CacheConfig struct {
	TTLSeconds int `toml:"ttl_seconds" validate:"gte=0"`
	MaxEntries int `toml:"max_entries" validate:"gte=0"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path" validate:"required"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies VIRE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("VIRE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VIRE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if dir := os.Getenv("VIRE_ANALYSIS_DIR"); dir != "" {
		config.Artifacts.AnalysisDir = dir
	}
	if dir := os.Getenv("VIRE_BACKTEST_DIR"); dir != "" {
		config.Artifacts.BacktestDir = dir
	}
	if secret := os.Getenv("VIRE_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if user := os.Getenv("VIRE_ADMIN_USER"); user != "" {
		config.Auth.AdminUser = user
	}
	if password := os.Getenv("VIRE_ADMIN_PASSWORD"); password != "" {
		config.Auth.AdminPassword = password
	}
	if badgerPath := os.Getenv("VIRE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("VIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks mandatory configuration and returns a list of issues.
func (c *Config) Validate() []string {
	var issues []string

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				issues = append(issues, fmt.Sprintf("%s: failed %q validation", ve.Namespace(), ve.Tag()))
			}
		} else {
			issues = append(issues, err.Error())
		}
	}

	return issues
}
