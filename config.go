package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	UI struct {
		Color            string `mapstructure:"color" validate:"color"`
		MaxWidth         int    `mapstructure:"max_width" validate:"min=40,max=200"`
		PlaceholderTitle string `mapstructure:"placeholder_title"`
		ShowPlaylistNav  bool   `mapstructure:"show_playlist_nav"`
		ShowVolume       bool   `mapstructure:"show_volume"`
	} `mapstructure:"ui"`
	Controls struct {
		SeekStep      float64   `mapstructure:"seek_step" validate:"gt=0,lte=600"`
		VolumeStep    float64   `mapstructure:"volume_step" validate:"gt=0,lte=1"`
		PlaybackRates []float64 `mapstructure:"playback_rates" validate:"min=1,dive,gt=0,lte=16"`
		Qualities     []string  `mapstructure:"qualities" validate:"min=1,dive,required"`
		AutoplayNext  bool      `mapstructure:"autoplay_next"`
	} `mapstructure:"controls"`
	Media struct {
		Backend       string  `mapstructure:"backend" validate:"oneof=mpv clock"`
		MPVPath       string  `mapstructure:"mpv_path" validate:"required"`
		ClockDuration float64 `mapstructure:"clock_duration" validate:"gt=0"`
	} `mapstructure:"media"`
	Library struct {
		WatchDir string `mapstructure:"watch_dir"`
	} `mapstructure:"library"`
	Log    LogConfig `mapstructure:"log"`
	Timing struct {
		UIRefreshMs int `mapstructure:"ui_refresh_ms" validate:"min=16,max=5000"`
	} `mapstructure:"timing"`
}

// ControlOptions projects the config onto the controller's tunables
func (c Config) ControlOptions() ControlOptions {
	return ControlOptions{
		SeekStep:         c.Controls.SeekStep,
		VolumeStep:       c.Controls.VolumeStep,
		PlaybackRates:    append([]float64(nil), c.Controls.PlaybackRates...),
		Qualities:        append([]string(nil), c.Controls.Qualities...),
		PlaceholderTitle: c.UI.PlaceholderTitle,
		AutoplayNext:     c.Controls.AutoplayNext,
	}
}

// SafeConfig wraps Config with thread-safe access
type SafeConfig struct {
	mu  sync.RWMutex
	cfg Config
}

// Get returns a copy of the current config (thread-safe read)
func (sc *SafeConfig) Get() Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	cfg := sc.cfg
	cfg.Controls.PlaybackRates = append([]float64(nil), sc.cfg.Controls.PlaybackRates...)
	cfg.Controls.Qualities = append([]string(nil), sc.cfg.Controls.Qualities...)
	return cfg
}

// Set updates the config (thread-safe write)
func (sc *SafeConfig) Set(cfg Config) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
}

var config = &SafeConfig{}

// Config file changed notification
type configReloadMsg struct{}

var configChangeChan = make(chan struct{}, 1)

// Watch for config file changes
func watchConfigCmd() tea.Cmd {
	return func() tea.Msg {
		<-configChangeChan
		return configReloadMsg{}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ui.color", "2")
	v.SetDefault("ui.max_width", 64)
	v.SetDefault("ui.placeholder_title", "No video selected")
	v.SetDefault("ui.show_playlist_nav", true)
	v.SetDefault("ui.show_volume", true)
	v.SetDefault("controls.seek_step", 10.0)
	v.SetDefault("controls.volume_step", 0.1)
	v.SetDefault("controls.playback_rates", []float64{0.5, 0.75, 1, 1.25, 1.5, 2})
	v.SetDefault("controls.qualities", []string{"auto", "1080p", "720p", "480p", "360p"})
	v.SetDefault("controls.autoplay_next", false)
	v.SetDefault("media.backend", "mpv")
	v.SetDefault("media.mpv_path", "mpv")
	v.SetDefault("media.clock_duration", 300.0)
	v.SetDefault("library.watch_dir", "")
	v.SetDefault("log.path", defaultLogPath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("timing.ui_refresh_ms", 250)
}

// defaultConfig returns the config produced by the defaults alone
func defaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// flagBindings maps config keys to the CLI flags that override them
var flagBindings = map[string]string{
	"ui.color":           "color",
	"controls.seek_step": "seek-step",
	"media.backend":      "backend",
	"media.mpv_path":     "mpv-path",
	"library.watch_dir":  "watch",
	"log.path":           "log-file",
	"log.level":          "log-level",
}

// initConfig loads defaults, the config file, GOPLAYER_ env vars and flags
// (in increasing precedence) and starts watching the file for changes
func initConfig(flags *pflag.FlagSet, configFile string) ([]string, error) {
	setDefaults(viper.GetViper())

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Check XDG_CONFIG_HOME first, fallback to ~/.config
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			if homeDir, err := os.UserHomeDir(); err == nil {
				configHome = filepath.Join(homeDir, ".config")
			}
		}
		if configHome != "" {
			viper.AddConfigPath(filepath.Join(configHome, "goplayer"))
		}
	}

	viper.SetEnvPrefix("GOPLAYER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var warnings []string
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("read config %s: %w", configFile, err)
			}
			warnings = append(warnings, fmt.Sprintf("error reading config file: %v", err))
		}
	}

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := viper.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg, problems := loadConfig(viper.GetViper())
	warnings = append(warnings, problems...)
	config.Set(cfg)

	// Watch for config file changes and live reload
	viper.OnConfigChange(func(e fsnotify.Event) {
		newCfg, _ := loadConfig(viper.GetViper())
		config.Set(newCfg)
		select {
		case configChangeChan <- struct{}{}:
		default:
			// Channel full, a reload is already pending
		}
	})
	if viper.ConfigFileUsed() != "" {
		viper.WatchConfig()
	}

	return warnings, nil
}

// loadConfig unmarshals and validates, resetting invalid fields to defaults
func loadConfig(v *viper.Viper) (Config, []string) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaultConfig(), []string{fmt.Sprintf("error parsing config, using defaults: %v", err)}
	}
	return cfg, validateConfig(&cfg)
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		return isValidColor(fl.Field().String())
	})
	return v
}

// validateConfig checks cfg, resets every invalid field to its default and
// returns a description of each problem
func validateConfig(cfg *Config) []string {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	defaults := defaultConfig()
	var problems []string
	for _, fe := range fieldErrs {
		name := fe.StructNamespace()
		// Drop dive indexes so Controls.PlaybackRates[2] resets the whole list
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		problems = append(problems, fmt.Sprintf("invalid %s (%v fails %s), using default", strings.TrimPrefix(name, "Config."), fe.Value(), fe.Tag()))
		resetField(cfg, &defaults, name)
	}
	return problems
}

func resetField(cfg, defaults *Config, namespace string) {
	switch strings.TrimPrefix(namespace, "Config.") {
	case "UI.Color":
		cfg.UI.Color = defaults.UI.Color
	case "UI.MaxWidth":
		cfg.UI.MaxWidth = defaults.UI.MaxWidth
	case "Controls.SeekStep":
		cfg.Controls.SeekStep = defaults.Controls.SeekStep
	case "Controls.VolumeStep":
		cfg.Controls.VolumeStep = defaults.Controls.VolumeStep
	case "Controls.PlaybackRates":
		cfg.Controls.PlaybackRates = defaults.Controls.PlaybackRates
	case "Controls.Qualities":
		cfg.Controls.Qualities = defaults.Controls.Qualities
	case "Media.Backend":
		cfg.Media.Backend = defaults.Media.Backend
	case "Media.MPVPath":
		cfg.Media.MPVPath = defaults.Media.MPVPath
	case "Media.ClockDuration":
		cfg.Media.ClockDuration = defaults.Media.ClockDuration
	case "Log.Level":
		cfg.Log.Level = defaults.Log.Level
	case "Log.MaxSizeMB":
		cfg.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	case "Log.MaxBackups":
		cfg.Log.MaxBackups = defaults.Log.MaxBackups
	case "Log.MaxAgeDays":
		cfg.Log.MaxAgeDays = defaults.Log.MaxAgeDays
	case "Timing.UIRefreshMs":
		cfg.Timing.UIRefreshMs = defaults.Timing.UIRefreshMs
	}
}

// isValidColor accepts ANSI codes 0-255 and #RGB / #RRGGBB hex colors
func isValidColor(color string) bool {
	if color == "" {
		return false
	}
	if color[0] == '#' {
		hex := color[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 32)
		return err == nil
	}
	if len(color) > 3 {
		return false
	}
	for _, r := range color {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(color)
	return err == nil && n <= 255
}

// uiRefreshInterval returns the clock-backend redraw interval
func (c Config) uiRefreshInterval() time.Duration {
	return time.Duration(c.Timing.UIRefreshMs) * time.Millisecond
}
