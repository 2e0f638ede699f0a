// Package visual maps normalized values to fill colors, outlines and
// extrusion heights.
package visual

import (
	"image/color"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// MaxElevation is the extrusion height of a cell scoring 1.
	MaxElevation = 5000.0

	fillAlpha          = 220
	outlineAlphaStrong = 120
	outlineAlphaWeak   = 60
	strongOutlineAbove = 0.8
)

type band struct {
	lo, hi   float64
	from, to colorful.Color
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// red-orange -> orange-yellow -> pale -> green
var bands = []band{
	{lo: 0, hi: 0.3, from: rgb(255, 100, 50), to: rgb(255, 255, 50)},
	{lo: 0.3, hi: 0.7, from: rgb(255, 255, 50), to: rgb(255, 255, 255)},
	{lo: 0.7, hi: 1, from: rgb(255, 255, 255), to: rgb(155, 255, 100)},
}

// TransitionSpec holds the animation durations the viewer applies when a
// cell's value changes.
type TransitionSpec struct {
	Elevation time.Duration `json:"elevation"`
	Color     time.Duration `json:"color"`
}

// Transitions are the durations used by the viewer.
var Transitions = TransitionSpec{
	Elevation: 600 * time.Millisecond,
	Color:     300 * time.Millisecond,
}

// ColorFor returns the fill color for a value in [0, 1]. Out of range values
// are clamped first.
func ColorFor(s float64) color.RGBA {
	s = clamp01(s)
	b := bands[len(bands)-1]
	for _, candidate := range bands {
		if s < candidate.hi {
			b = candidate
			break
		}
	}
	t := (s - b.lo) / (b.hi - b.lo)
	r, g, bl := b.from.BlendRgb(b.to, t).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: fillAlpha}
}

// OutlineFor returns the white outline color for a value. High values get a
// stronger outline.
func OutlineFor(s float64) color.RGBA {
	a := uint8(outlineAlphaWeak)
	if clamp01(s) > strongOutlineAbove {
		a = outlineAlphaStrong
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: a}
}

// ElevationFor returns the extrusion height for a value.
func ElevationFor(s float64) float64 {
	return clamp01(s) * MaxElevation
}

func clamp01(s float64) float64 {
	switch {
	case s != s: // NaN
		return 0
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
