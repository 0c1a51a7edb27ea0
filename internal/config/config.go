package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lu-zhengda/mailstate/internal/version"
)

const appName = "mailstate"

// Config holds all mailstate tool configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
	App     AppConfig     `toml:"app"`
	Keyring KeyringConfig `toml:"keyring"`

	// MasterPassword unlocks the settings file. It is only taken from the
	// environment, never from the config file.
	MasterPassword string `toml:"-" env:"MAILSTATE_MASTER_PASSWORD"`
}

// StorageConfig locates the stored documents and the database.
type StorageConfig struct {
	DataDir string `toml:"data_dir" env:"MAILSTATE_DATA_DIR"`
}

type LogConfig struct {
	Level string `toml:"level" env:"MAILSTATE_LOG_LEVEL"`
}

// AppConfig overrides the running application version migrations target.
type AppConfig struct {
	Version string `toml:"version" env:"MAILSTATE_APP_VERSION"`
}

// KeyringConfig controls caching of the master password in the OS keyring.
type KeyringConfig struct {
	Enabled bool `toml:"enabled" env:"MAILSTATE_KEYRING_ENABLED"`
}

func defaults() Config {
	return Config{
		Storage: StorageConfig{
			DataDir: DataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			Version: version.Current,
		},
		Keyring: KeyringConfig{
			Enabled: true,
		},
	}
}

// Load reads config from path, then applies environment overrides. If path
// is empty or the file does not exist, defaults are used as the base.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv adds the variables in the .env file at path to the environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate checks the values other packages parse.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if err := version.Validate(c.App.Version); err != nil {
		return fmt.Errorf("invalid app version: %w", err)
	}
	if c.Storage.DataDir == "" {
		return errors.New("invalid config: storage.data_dir is empty")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ConfigDir returns the mailstate config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the mailstate data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}
