package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// TestSafeConfigConcurrency tests that SafeConfig can be safely accessed from multiple goroutines
func TestSafeConfigConcurrency(t *testing.T) {
	sc := &SafeConfig{}

	initialCfg := defaultConfig()
	initialCfg.UI.Color = "1"
	sc.Set(initialCfg)

	var wg sync.WaitGroup

	// Start 10 writers
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg := defaultConfig()
				cfg.UI.Color = string(rune('0' + (id % 10)))
				cfg.UI.MaxWidth = 40 + id
				cfg.Controls.AutoplayNext = (j % 2) == 0
				sc.Set(cfg)
			}
		}(i)
	}

	// Start 10 readers
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg := sc.Get()
				_ = cfg.UI.Color
				_ = cfg.UI.MaxWidth
				_ = cfg.Controls.AutoplayNext
				_ = len(cfg.Controls.PlaybackRates)
			}
		}()
	}

	wg.Wait()
}

// TestSafeConfigGetReturnsCopy tests that Get() returns a copy, not a reference
func TestSafeConfigGetReturnsCopy(t *testing.T) {
	sc := &SafeConfig{}

	cfg1 := Config{}
	cfg1.UI.Color = "1"
	cfg1.UI.MaxWidth = 45
	cfg1.Controls.PlaybackRates = []float64{1, 2}
	cfg1.Controls.Qualities = []string{"auto"}
	sc.Set(cfg1)

	retrieved1 := sc.Get()
	retrieved1.UI.Color = "2"
	retrieved1.UI.MaxWidth = 100
	retrieved1.Controls.PlaybackRates[0] = 9
	retrieved1.Controls.Qualities[0] = "4k"

	retrieved2 := sc.Get()

	assertEqual(t, retrieved2.UI.Color, "1", "color")
	assertEqual(t, retrieved2.UI.MaxWidth, 45, "max_width")
	assertEqual(t, retrieved2.Controls.PlaybackRates[0], 1.0, "playback_rates[0]")
	assertEqual(t, retrieved2.Controls.Qualities[0], "auto", "qualities[0]")
}

// TestIsValidColor tests the color validation function
func TestIsValidColor(t *testing.T) {
	tests := []struct {
		name  string
		color string
		valid bool
	}{
		// ANSI codes
		{"ansi single digit", "1", true},
		{"ansi double digit", "15", true},
		{"ansi triple digit", "255", true},
		{"ansi zero", "0", true},
		{"ansi out of range", "256", false},
		{"ansi too long", "0001", false},
		{"ansi with letter", "1a", false},

		// Hex colors
		{"hex 6 digits", "#FF5733", true},
		{"hex lowercase", "#ff5733", true},
		{"hex 3 digits", "#F00", true},
		{"hex mixed case", "#Ff5733", true},
		{"hex no hash", "FF5733", false},
		{"hex invalid char", "#GG5733", false},
		{"hex wrong length", "#FF57", false},

		// Edge cases
		{"empty", "", false},
		{"just hash", "#", false},
		{"spaces", " 1 ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isValidColor(tt.color)
			if result != tt.valid {
				t.Errorf("isValidColor(%q) = %v; want %v", tt.color, result, tt.valid)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()

	if problems := validateConfig(&cfg); len(problems) > 0 {
		t.Fatalf("defaults fail validation: %v", problems)
	}
	assertEqual(t, cfg.Controls.SeekStep, 10.0, "seek_step")
	assertEqual(t, cfg.Controls.VolumeStep, 0.1, "volume_step")
	assertEqual(t, len(cfg.Controls.PlaybackRates), 6, "playback_rates")
	assertEqual(t, cfg.Controls.Qualities[0], "auto", "first quality")
	assertEqual(t, cfg.Media.Backend, "mpv", "backend")
	assertEqual(t, cfg.UI.ShowPlaylistNav, true, "show_playlist_nav")
}

// TestValidateConfig tests that each invalid field is reported and reset
func TestValidateConfig(t *testing.T) {
	defaults := defaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
		check  func(*testing.T, Config)
	}{
		{
			name:   "max_width too small",
			mutate: func(c *Config) { c.UI.MaxWidth = 10 },
			check: func(t *testing.T, c Config) {
				assertEqual(t, c.UI.MaxWidth, defaults.UI.MaxWidth, "max_width")
			},
		},
		{
			name:   "invalid color",
			mutate: func(c *Config) { c.UI.Color = "invalid" },
			check: func(t *testing.T, c Config) {
				assertEqual(t, c.UI.Color, "2", "color")
			},
		},
		{
			name:   "zero seek step",
			mutate: func(c *Config) { c.Controls.SeekStep = 0 },
			check: func(t *testing.T, c Config) {
				assertEqual(t, c.Controls.SeekStep, 10.0, "seek_step")
			},
		},
		{
			name:   "volume step above one",
			mutate: func(c *Config) { c.Controls.VolumeStep = 5 },
			check: func(t *testing.T, c Config) {
				assertEqual(t, c.Controls.VolumeStep, 0.1, "volume_step")
			},
		},
		{
			name:   "negative playback rate",
			mutate: func(c *Config) { c.Controls.PlaybackRates = []float64{1, -2} },
			check: func(t *testing.T, c Config) {
				assertEqual(t, len(c.Controls.PlaybackRates), len(defaults.Controls.PlaybackRates), "playback_rates reset")
			},
		},
		{
			name:   "empty qualities",
			mutate: func(c *Config) { c.Controls.Qualities = nil },
			check: func(t *testing.T, c Config) {
				assertEqual(t, len(c.Controls.Qualities), len(defaults.Controls.Qualities), "qualities reset")
			},
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Media.Backend = "vlc" },
			check: func(t *testing.T, c Config) {
				assertEqual(t, c.Media.Backend, "mpv", "backend")
			},
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Log.Level = "trace" },
			check: func(t *testing.T, c Config) {
				assertEqual(t, c.Log.Level, "info", "log level")
			},
		},
		{
			name:   "ui_refresh_ms too fast",
			mutate: func(c *Config) { c.Timing.UIRefreshMs = 5 },
			check: func(t *testing.T, c Config) {
				assertEqual(t, c.Timing.UIRefreshMs, 250, "ui_refresh_ms")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)

			problems := validateConfig(&cfg)
			if len(problems) == 0 {
				t.Fatal("expected a validation problem")
			}
			tt.check(t, cfg)

			if again := validateConfig(&cfg); len(again) > 0 {
				t.Errorf("still invalid after reset: %v", again)
			}
		})
	}
}

func TestValidateConfigMultipleErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.UI.Color = "999"
	cfg.UI.MaxWidth = 10
	cfg.Controls.SeekStep = -1
	cfg.Media.ClockDuration = 0
	cfg.Timing.UIRefreshMs = 70000

	problems := validateConfig(&cfg)
	if len(problems) < 5 {
		t.Errorf("Expected at least 5 problems, got %d: %v", len(problems), problems)
	}
	if again := validateConfig(&cfg); len(again) > 0 {
		t.Errorf("Expected no problems after reset, got %v", again)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
ui:
  color: "#ff8800"
controls:
  seek_step: 5
  playback_rates: [1, 1.5, 2]
  autoplay_next: true
timing:
  ui_refresh_ms: 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	assertNoError(t, v.ReadInConfig())

	cfg, problems := loadConfig(v)

	assertEqual(t, len(problems), 1, "problem count")
	assertEqual(t, cfg.UI.Color, "#ff8800", "color")
	assertEqual(t, cfg.Controls.SeekStep, 5.0, "seek_step")
	assertEqual(t, len(cfg.Controls.PlaybackRates), 3, "playback_rates")
	assertEqual(t, cfg.Controls.AutoplayNext, true, "autoplay_next")
	assertEqual(t, cfg.Controls.VolumeStep, 0.1, "volume_step default kept")
	assertEqual(t, cfg.Timing.UIRefreshMs, 250, "ui_refresh_ms reset")
}

func TestControlOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Controls.SeekStep = 5
	cfg.UI.PlaceholderTitle = "Nothing playing"

	opts := cfg.ControlOptions()
	assertEqual(t, opts.SeekStep, 5.0, "seek step")
	assertEqual(t, opts.PlaceholderTitle, "Nothing playing", "placeholder")

	opts.PlaybackRates[0] = 42
	assertEqual(t, cfg.Controls.PlaybackRates[0], 0.5, "options do not alias config")
}

func TestUIRefreshInterval(t *testing.T) {
	cfg := defaultConfig()
	cfg.Timing.UIRefreshMs = 100
	assertEqual(t, cfg.uiRefreshInterval(), 100*time.Millisecond, "interval")
}
