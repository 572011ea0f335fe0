// Package config loads asyncgit settings from defaults, a YAML file,
// ASYNCGIT_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/asyncgit-go/internal/render"
)

const (
	KeyRepo       = "repo"
	KeyRemote     = "remote"
	KeyVerbose    = "verbose"
	KeyTheme      = "theme"
	KeyColor      = "color"
	KeyWatchDelay = "watch_delay"

	EnvPrefix = "ASYNCGIT"
)

type Config struct {
	Repo       string        `mapstructure:"repo"`
	Remote     string        `mapstructure:"remote"`
	Verbose    bool          `mapstructure:"verbose"`
	Theme      string        `mapstructure:"theme"`
	Color      string        `mapstructure:"color"`
	WatchDelay time.Duration `mapstructure:"watch_delay"`
}

// searchDirs lists where config.yaml is looked up when no file is given.
var searchDirs = func() []string {
	return []string{filepath.Join(xdg.ConfigHome, "asyncgit")}
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRepo, ".")
	v.SetDefault(KeyRemote, "")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyTheme, render.ThemeAuto.String())
	v.SetDefault(KeyColor, "auto")
	v.SetDefault(KeyWatchDelay, 350*time.Millisecond)
}

// Load reads the configuration into v. An explicit file must exist; the
// default file is optional. Flags must be bound to v before calling Load.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Theme {
	case render.ThemeAuto.String(), render.ThemeLight.String(), render.ThemeDark.String():
	default:
		return fmt.Errorf("invalid theme %q", c.Theme)
	}
	if _, err := render.ColorModeFromString(c.Color); err != nil {
		return err
	}
	if c.WatchDelay < 0 {
		return fmt.Errorf("invalid watch_delay %s", c.WatchDelay)
	}
	return nil
}

func (c Config) ThemePreference() render.ThemePreference {
	return render.ThemePreferenceFromString(c.Theme)
}

func (c Config) ColorMode() render.ColorMode {
	mode, _ := render.ColorModeFromString(c.Color)
	return mode
}

// YAML renders the effective configuration in the config file format.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(struct {
		Repo       string `yaml:"repo"`
		Remote     string `yaml:"remote"`
		Verbose    bool   `yaml:"verbose"`
		Theme      string `yaml:"theme"`
		Color      string `yaml:"color"`
		WatchDelay string `yaml:"watch_delay"`
	}{c.Repo, c.Remote, c.Verbose, c.Theme, c.Color, c.WatchDelay.String()})
}
