package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the full configuration surface of a run.
type Config struct {
	// Repo is the repository to analyze.
	Repo string `mapstructure:"repo" yaml:"repo"`

	// Output is the directory frames are written to.
	Output string `mapstructure:"output" yaml:"output"`

	// Frame geometry in pixels.
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`

	// WindowDays is the trailing window for heat calculation.
	WindowDays int `mapstructure:"window_days" yaml:"window_days"`

	// Mode is "heat" or "committer".
	Mode string `mapstructure:"mode" yaml:"mode"`

	// Workers bounds the render pool; 0 means one per CPU.
	Workers int `mapstructure:"workers" yaml:"workers"`

	// CacheDir holds the analysis cache database.
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`

	// NoCache forces a fresh analysis and skips persisting one.
	NoCache bool `mapstructure:"no_cache" yaml:"no_cache"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Repo:       ".",
		Output:     "frames",
		Width:      1280,
		Height:     720,
		WindowDays: 30,
		Mode:       "heat",
		Workers:    runtime.NumCPU(),
		CacheDir:   filepath.Join(homeDir, ".git-radio", "cache"),
	}
}

// Load reads configuration from an optional YAML file and GIT_RADIO_*
// environment variables, on top of defaults. A missing config file is fine;
// an unreadable one is not.
func Load(path string) (*Config, error) {
	// .env files are optional developer convenience.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("repo", cfg.Repo)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("width", cfg.Width)
	v.SetDefault("height", cfg.Height)
	v.SetDefault("window_days", cfg.WindowDays)
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("cache_dir", cfg.CacheDir)
	v.SetDefault("no_cache", cfg.NoCache)

	v.SetEnvPrefix("GIT_RADIO")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".git-radio")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(homeDir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Repo == "" {
		return fmt.Errorf("repo must be set")
	}
	if c.Output == "" {
		return fmt.Errorf("output must be set")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", c.Width, c.Height)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive, got %d", c.WindowDays)
	}
	if c.Mode != "heat" && c.Mode != "committer" {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
