// Package fonts resolves the font used to draw placeholder text.
//
// Fonts come in a fixed ladder of pixel sizes. A request either names a pixel
// size, which is clamped and snapped to the nearest ladder entry, or leaves it
// to the canvas area to pick a tier. Loaded fonts are kept in a bounded cache
// and shared by concurrent requests; each request draws through its own Face.
package fonts

import "fmt"

// Sizes is the ladder of supported pixel sizes, ascending.
var Sizes = [...]int{8, 16, 32, 64, 128}

// FallbackSize is loaded when the selected font cannot be loaded.
const FallbackSize = 16

// Area thresholds for automatic selection. Each is an exclusive lower bound.
const (
	areaXLarge = 800_000
	areaLarge  = 200_000
	areaMedium = 50_000
	areaSmall  = 10_000
)

// ID identifies one ladder entry, e.g. "sans-32".
type ID string

func IDForSize(size int) ID {
	return ID(fmt.Sprintf("sans-%d", size))
}

// NearestSize snaps size to the closest ladder entry. When two entries are
// equally close the smaller one wins.
func NearestSize(size int) int {
	best := Sizes[0]
	for _, s := range Sizes[1:] {
		if abs(s-size) < abs(best-size) {
			best = s
		}
	}
	return best
}

// AutoSize picks a ladder entry from the canvas area.
func AutoSize(width, height int) int {
	area := width * height
	switch {
	case area > areaXLarge:
		return Sizes[4]
	case area > areaLarge:
		return Sizes[3]
	case area > areaMedium:
		return Sizes[2]
	case area > areaSmall:
		return Sizes[1]
	default:
		return Sizes[0]
	}
}

// ResolveSize returns the ladder size for a request. explicit <= 0 means auto.
func ResolveSize(width, height, explicit, minSize, maxSize int) int {
	if explicit <= 0 {
		return AutoSize(width, height)
	}
	return NearestSize(clamp(explicit, minSize, maxSize))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
