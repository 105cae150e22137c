package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Gallery  GalleryConfig  `toml:"gallery"`
	Viewer   ViewerConfig   `toml:"viewer"`
	Scan     ScanConfig     `toml:"scan"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// GalleryConfig contains paging and presentation defaults.
type GalleryConfig struct {
	PerPage  int    `toml:"per_page"`
	Sort     string `toml:"sort"`
	ViewMode string `toml:"view_mode"`
	// ThumbnailSize is the longest edge of generated thumbnails in pixels.
	ThumbnailSize int `toml:"thumbnail_size"`
	// LoadRate caps thumbnail decodes per second.
	LoadRate    float64 `toml:"load_rate"`
	LoadWorkers int     `toml:"load_workers"`
}

// ViewerConfig holds the gesture thresholds and animation timings of the image viewer.
type ViewerConfig struct {
	MinScale          float64  `toml:"min_scale"`
	MaxScale          float64  `toml:"max_scale"`
	ZoomStep          float64  `toml:"zoom_step"`
	SwipeDistance     float64  `toml:"swipe_distance"`
	SwipeVelocity     float64  `toml:"swipe_velocity"`
	TapSlop           float64  `toml:"tap_slop"`
	DoubleTapWindow   Duration `toml:"double_tap_window"`
	ControlsHideDelay Duration `toml:"controls_hide_delay"`
	NavigateDelay     Duration `toml:"navigate_delay"`
	OutDuration       Duration `toml:"out_duration"`
	InDuration        Duration `toml:"in_duration"`
}

// ScanConfig controls which files a folder scan picks up.
type ScanConfig struct {
	Include  []string `toml:"include"`
	Exclude  []string `toml:"exclude"`
	Debounce Duration `toml:"debounce"`
}

// Duration is a [time.Duration] that decodes from TOML strings such as "300ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate reports inconsistent viewer or gallery settings.
func (c *Config) Validate() error {
	v := c.Viewer
	switch {
	case v.MinScale <= 0 || v.MaxScale < v.MinScale:
		return fmt.Errorf("%w: viewer scale bounds [%v, %v]", ErrInvalidConfig, v.MinScale, v.MaxScale)
	case v.ZoomStep <= 0:
		return fmt.Errorf("%w: viewer zoom_step must be positive", ErrInvalidConfig)
	case v.SwipeDistance <= 0 || v.SwipeVelocity <= 0:
		return fmt.Errorf("%w: swipe thresholds must be positive", ErrInvalidConfig)
	case c.Gallery.PerPage < 1 || c.Gallery.PerPage > MaxPerPage:
		return fmt.Errorf("%w: gallery per_page %d", ErrInvalidConfig, c.Gallery.PerPage)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, os.ErrExist)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
