package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings. An empty Migrations path uses the
// migrations compiled into the binary.
type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	Migrations string `mapstructure:"migrations"`
}

// UIConfig holds presentation settings. Columns and Rows size the drawing
// area in terminal cells, header included.
type UIConfig struct {
	Columns        int           `mapstructure:"columns"`
	Rows           int           `mapstructure:"rows"`
	PixelRatio     float64       `mapstructure:"pixel_ratio"`
	FrameRate      int           `mapstructure:"frame_rate"`
	ScreenTween    time.Duration `mapstructure:"screen_tween"`
	ExpandTween    time.Duration `mapstructure:"expand_tween"`
	SwipeTween     time.Duration `mapstructure:"swipe_tween"`
	DateFormat     string        `mapstructure:"date_format"`
	CurrencySymbol string        `mapstructure:"currency_symbol"`
	Timezone       string        `mapstructure:"timezone"`
}

// PoolConfig sizes the fixed-capacity pools allocated at startup.
type PoolConfig struct {
	Listeners     int `mapstructure:"listeners"`
	Rows          int `mapstructure:"rows"`
	ScreenChanges int `mapstructure:"screen_changes"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Trace bool   `mapstructure:"trace"`
}

// Location resolves the configured timezone, falling back to local time.
func (u UIConfig) Location() *time.Location {
	if u.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "cashflow", "cashflow.db"))
	v.SetDefault("database.migrations", "")
	v.SetDefault("ui.columns", 80)
	v.SetDefault("ui.rows", 22)
	v.SetDefault("ui.pixel_ratio", 1.0)
	v.SetDefault("ui.frame_rate", 60)
	v.SetDefault("ui.screen_tween", "400ms")
	v.SetDefault("ui.expand_tween", "400ms")
	v.SetDefault("ui.swipe_tween", "250ms")
	v.SetDefault("ui.date_format", "02/01/2006")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.timezone", "")
	v.SetDefault("pool.listeners", 512)
	v.SetDefault("pool.rows", 64)
	v.SetDefault("pool.screen_changes", 8)
	v.SetDefault("log.file", filepath.Join(home, ".local", "state", "cashflow", "cashflow.log"))
	v.SetDefault("log.trace", false)
}

// Load reads configuration from file and env. Env var overrides use prefix CASHFLOW_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CASHFLOW_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "cashflow"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CASHFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("CASHFLOW_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "cashflow", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("ui.columns", cfg.UI.Columns)
	v.Set("ui.rows", cfg.UI.Rows)
	v.Set("ui.pixel_ratio", cfg.UI.PixelRatio)
	v.Set("ui.frame_rate", cfg.UI.FrameRate)
	v.Set("ui.screen_tween", cfg.UI.ScreenTween.String())
	v.Set("ui.expand_tween", cfg.UI.ExpandTween.String())
	v.Set("ui.swipe_tween", cfg.UI.SwipeTween.String())
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("pool.listeners", cfg.Pool.Listeners)
	v.Set("pool.rows", cfg.Pool.Rows)
	v.Set("pool.screen_changes", cfg.Pool.ScreenChanges)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.trace", cfg.Log.Trace)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
