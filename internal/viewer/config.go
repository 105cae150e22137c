package viewer

import (
	"time"

	"github.com/desertthunder/wallview/internal/shared"
)

// Config holds gesture thresholds and animation timings.
type Config struct {
	MinScale float64
	MaxScale float64
	ZoomStep float64

	// SwipeDistance is the exclusive displacement threshold in pixels.
	SwipeDistance float64
	// SwipeVelocity is the exclusive velocity threshold in pixels per millisecond.
	SwipeVelocity float64
	// TapSlop is the largest movement still treated as a tap.
	TapSlop float64

	DoubleTapWindow   time.Duration
	ControlsHideDelay time.Duration
	NavigateDelay     time.Duration
	OutDuration       time.Duration
	InDuration        time.Duration
}

// DefaultConfig returns the thresholds of the embedded application config.
func DefaultConfig() Config {
	return ConfigFrom(shared.DefaultConfig().Viewer)
}

// ConfigFrom converts the TOML viewer section.
func ConfigFrom(c shared.ViewerConfig) Config {
	return Config{
		MinScale:          c.MinScale,
		MaxScale:          c.MaxScale,
		ZoomStep:          c.ZoomStep,
		SwipeDistance:     c.SwipeDistance,
		SwipeVelocity:     c.SwipeVelocity,
		TapSlop:           c.TapSlop,
		DoubleTapWindow:   c.DoubleTapWindow.Duration,
		ControlsHideDelay: c.ControlsHideDelay.Duration,
		NavigateDelay:     c.NavigateDelay.Duration,
		OutDuration:       c.OutDuration.Duration,
		InDuration:        c.InDuration.Duration,
	}
}
