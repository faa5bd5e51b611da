package render

import (
	"image/color"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// background fills every pixel that carries no data: dead columns, rows past
// a file's line count, and lines with no recorded history.
var background = color.RGBA{R: 8, G: 8, B: 12, A: 255}

// committerColorSeed fixes the hue sequence so the same committer gets the
// same color in every frame and across re-runs.
const committerColorSeed = 42

// maxHeat is the edit count at which the gradient saturates.
const maxHeat = 10

// heatStops is the cold-to-hot gradient in LCh: dark blue, blue, light
// yellow, orange, red-orange. Interpolation happens in linear RGB between
// the two nearest stops.
var heatStops = []colorful.Color{
	colorful.Hcl(250, 0.30, 0.20),
	colorful.Hcl(260, 0.40, 0.40),
	colorful.Hcl(90, 0.35, 0.95),
	colorful.Hcl(50, 0.80, 0.75),
	colorful.Hcl(30, 1.00, 0.65),
}

// heatColor maps an edit count to the gradient. Zero heat on a line that has
// history lands on the coolest stop; callers use background for lines with
// no history at all.
func heatColor(heat int) color.RGBA {
	pos := float64(heat) / maxHeat
	if pos > 1 {
		pos = 1
	}

	scaled := pos * float64(len(heatStops)-1)
	i := int(scaled)
	j := i + 1
	if j > len(heatStops)-1 {
		j = len(heatStops) - 1
	}
	t := scaled - float64(i)

	r, g, b := heatStops[i].BlendLinearRgb(heatStops[j], t).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// committerColors draws one bright saturated hue per committer from a fixed
// seed, in registration order, so the assignment is reproducible and
// independent of render scheduling.
func committerColors(n int) []color.RGBA {
	rng := rand.New(rand.NewSource(committerColorSeed))
	colors := make([]color.RGBA, n)
	for i := range colors {
		hue := rng.Float64() * 360
		r, g, b := colorful.Hcl(hue, 0.80, 0.70).Clamped().RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}
