package viewer

import (
	"fmt"
	"math"

	"github.com/desertthunder/wallview/internal/input"
)

// Transform is the pan and zoom applied to the enlarged image.
type Transform struct {
	Scale float64
	X, Y  float64
}

// Identity is the untransformed image.
func Identity() Transform { return Transform{Scale: 1} }

func (t Transform) String() string {
	return fmt.Sprintf("translate(%.1fpx, %.1fpx) scale(%.1f)", t.X, t.Y, t.Scale)
}

// ZoomAt changes the scale by steps*step, clamped to [min, max], keeping the point under cursor fixed.
//
// The scale is rounded to the decimal precision of step so repeated steps do not accumulate error.
func (t Transform) ZoomAt(cursor input.Point, steps, step, min, max float64) Transform {
	p := precision(step)
	next := clamp(math.Round((t.Scale+steps*step)*p)/p, min, max)
	if next == t.Scale || t.Scale == 0 {
		return t
	}

	ratio := next / t.Scale
	return Transform{
		Scale: next,
		X:     cursor.X - (cursor.X-t.X)*ratio,
		Y:     cursor.Y - (cursor.Y-t.Y)*ratio,
	}
}

// Translate returns t moved by d.
func (t Transform) Translate(d input.Point) Transform {
	t.X += d.X
	t.Y += d.Y
	return t
}

// precision returns the smallest power of ten that makes step whole, up to 1e9.
func precision(step float64) float64 {
	p := 1.0
	for range 9 {
		if v := math.Abs(step) * p; math.Abs(v-math.Round(v)) < 1e-9 {
			break
		}
		p *= 10
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
